package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spigell/closai/internal/sizing"
)

var (
	ErrInvalidRef = errors.New("invalid product reference")

	refPattern    = regexp.MustCompile(`(?:products|goods)/(\d+)`)
	goodsNoDigits = regexp.MustCompile(`^\d+$`)
)

// Product is the shop's view of a garment.
type Product struct {
	GoodsNo   string        `json:"goodsNo"`
	Title     string        `json:"title"`
	Brand     string        `json:"brand"`
	ImageURL  string        `json:"imageUrl"`
	Link      string        `json:"link"`
	Price     int           `json:"price"`
	Category1 string        `json:"category1"`
	Category2 string        `json:"category2"`
	SizeTable *sizing.Table `json:"sizeTable"`
	Reviews   []Review      `json:"reviews"`
}

// Review is a single customer review.
type Review struct {
	No          string `json:"reviewNo"`
	UserName    string `json:"userName"`
	UserImage   string `json:"userImage,omitempty"`
	ReviewImage string `json:"reviewImage,omitempty"`
	Content     string `json:"content"`
	Rating      int    `json:"rating"`
	Date        string `json:"date"`
	Size        string `json:"size,omitempty"`
	BodySize    string `json:"profile,omitempty"`
}

// ParseRef extracts the goods number from a product URL or accepts a bare number.
func ParseRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if goodsNoDigits.MatchString(ref) {
		return ref, nil
	}
	if m := refPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
}

func (p *Product) Validate() error {
	if p == nil {
		return errors.New("product is nil")
	}
	if strings.TrimSpace(p.GoodsNo) == "" {
		return errors.New("product has no goods number")
	}
	if p.Price < 0 {
		return fmt.Errorf("product %s has negative price %d", p.GoodsNo, p.Price)
	}
	return nil
}

// ReviewTexts returns the non-empty review bodies.
func (p *Product) ReviewTexts() []string {
	out := make([]string, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		if text := strings.TrimSpace(r.Content); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func (p *Product) needsPage() bool {
	return p.Title == "" || p.ImageURL == "" || p.Price == 0 || p.SizeTable.IsEmpty()
}
