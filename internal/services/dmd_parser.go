package services

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"complexcare/internal/models"
)

// dmdLinkPattern matches product links such as /vmp/39720311000001101.
var dmdLinkPattern = regexp.MustCompile(`/(vtm|vmp|amp)/(\d{6,20})(?:[/?#]|$)`)

// supplierSuffix captures the trailing "(Supplier Ltd)" of AMP names.
var supplierSuffix = regexp.MustCompile(`^(.*\S)\s*\(([^()]+)\)$`)

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}

// productLinks collects every distinct product anchor under root, in
// document order.
func productLinks(root *html.Node) []models.DMDProduct {
	seen := make(map[string]bool)
	var products []models.DMDProduct
	walkElements(root, func(n *html.Node) {
		if n.DataAtom != atom.A {
			return
		}
		m := dmdLinkPattern.FindStringSubmatch(attr(n, "href"))
		if m == nil || seen[m[2]] {
			return
		}
		name := textContent(n)
		if name == "" {
			return
		}
		seen[m[2]] = true
		p := models.DMDProduct{Code: m[2], Name: name, Type: strings.ToUpper(m[1])}
		if p.Type == models.DMDTypeAMP {
			if s := supplierSuffix.FindStringSubmatch(name); s != nil {
				p.Name, p.Supplier = s[1], s[2]
			}
		}
		products = append(products, p)
	})
	return products
}

func parseDMDSearch(r io.Reader) ([]models.DMDProduct, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	products := productLinks(doc)
	if products == nil {
		products = []models.DMDProduct{}
	}
	return products, nil
}

// parseDMDDetail reads a product page: the heading, label/value rows from
// tables or definition lists, and links to related products.
func parseDMDDetail(r io.Reader, code, productType string) (*models.DMDDetail, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	d := &models.DMDDetail{Code: code, Type: productType, Attributes: map[string]string{}}
	walkElements(doc, func(n *html.Node) {
		switch n.DataAtom {
		case atom.H1:
			if d.Name == "" {
				d.Name = textContent(n)
			}
		case atom.Tr:
			var label, value string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode {
					continue
				}
				switch c.DataAtom {
				case atom.Th:
					label = textContent(c)
				case atom.Td:
					if label == "" {
						label = textContent(c)
					} else if value == "" {
						value = textContent(c)
					}
				}
			}
			if label != "" && value != "" {
				d.Attributes[label] = value
			}
		case atom.Dt:
			for dd := n.NextSibling; dd != nil; dd = dd.NextSibling {
				if dd.Type == html.ElementNode {
					if dd.DataAtom == atom.Dd {
						d.Attributes[textContent(n)] = textContent(dd)
					}
					break
				}
			}
		}
	})

	for _, p := range productLinks(doc) {
		if p.Code != code {
			d.Related = append(d.Related, p)
		}
	}
	return d, nil
}
