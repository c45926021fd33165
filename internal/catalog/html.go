package catalog

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/closai/internal/sizing"
)

var (
	pricePattern = regexp.MustCompile(`([0-9,]+)원`)

	sizeImageSelectors = []string{
		`img[alt*="사이즈"]`,
		`img[alt*="실측"]`,
		`.mysize_area img`,
		`#detail_view img`,
	}
)

// pageInfo is what the product page exposes through its markup.
type pageInfo struct {
	Title     string
	ImageURL  string
	Price     int
	SizeImage string
}

func (c *Client) page(ctx context.Context, link string) (*pageInfo, error) {
	data, err := c.get(ctx, link, nil, c.siteURL+"/")
	if err != nil {
		return nil, err
	}
	return parsePage(data)
}

func parsePage(data []byte) (*pageInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing product page: %w", err)
	}

	info := &pageInfo{
		Title:    strings.TrimSpace(doc.Find(".product_title").First().Text()),
		ImageURL: meta(doc, "og:image"),
	}
	if info.Title == "" {
		info.Title = meta(doc, "og:title")
	}

	if m := pricePattern.FindStringSubmatch(meta(doc, "og:description")); m != nil {
		if price, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			info.Price = price
		}
	}

	for _, selector := range sizeImageSelectors {
		if src, ok := doc.Find(selector).First().Attr("src"); ok && strings.TrimSpace(src) != "" {
			info.SizeImage = strings.TrimSpace(src)
			break
		}
	}

	return info, nil
}

func meta(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property="%s"]`, property)).Attr("content")
	return strings.TrimSpace(content)
}

// apply fills only what the JSON sources left empty.
func (info *pageInfo) apply(p *Product, imageBase string) {
	if p.Title == "" {
		p.Title = info.Title
	}
	if p.ImageURL == "" {
		p.ImageURL = absURL(imageBase, info.ImageURL)
	}
	if p.Price == 0 {
		p.Price = info.Price
	}
	if p.SizeTable.IsEmpty() && info.SizeImage != "" {
		if p.SizeTable == nil {
			p.SizeTable = &sizing.Table{Headers: []string{}, Rows: []sizing.Row{}}
		}
		p.SizeTable.ImageURL = absURL(imageBase, info.SizeImage)
	}
}
