package models

import "regexp"

var odsCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{5}$`)

type GPPractice struct {
	ODSCode  string `json:"ods_code"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Status   string `json:"status,omitempty"`
}

func ValidODSCode(code string) bool {
	return odsCodePattern.MatchString(code)
}
