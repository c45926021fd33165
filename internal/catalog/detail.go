package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type detailPayload struct {
	GoodsNm           string `mapstructure:"goodsNm"`
	ThumbnailImageURL string `mapstructure:"thumbnailImageUrl"`
	BrandInfo         struct {
		BrandName string `mapstructure:"brandName"`
	} `mapstructure:"brandInfo"`
	GoodsPrice struct {
		SalePrice   int `mapstructure:"salePrice"`
		NormalPrice int `mapstructure:"normalPrice"`
	} `mapstructure:"goodsPrice"`
	Category struct {
		Depth1 string `mapstructure:"categoryDepth1Title"`
		Depth2 string `mapstructure:"categoryDepth2Title"`
	} `mapstructure:"category"`
}

func (c *Client) detail(ctx context.Context, goodsNo string) (*detailPayload, error) {
	u := fmt.Sprintf("%s/api2/goods/%s", c.detailURL, goodsNo)
	body, err := c.getJSON(ctx, u, nil, c.productURL(goodsNo))
	if err != nil {
		return nil, err
	}

	data := field(body, "data")
	if data == nil {
		return nil, errors.New("goods detail has no data")
	}

	var payload detailPayload
	if err := decode(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding goods detail: %w", err)
	}
	return &payload, nil
}

func (d *detailPayload) apply(p *Product, imageBase string) {
	p.Title = strings.TrimSpace(d.GoodsNm)
	p.Brand = strings.TrimSpace(d.BrandInfo.BrandName)
	p.ImageURL = absURL(imageBase, d.ThumbnailImageURL)
	p.Category1 = strings.TrimSpace(d.Category.Depth1)
	p.Category2 = strings.TrimSpace(d.Category.Depth2)

	p.Price = d.GoodsPrice.SalePrice
	if p.Price == 0 {
		p.Price = d.GoodsPrice.NormalPrice
	}
}
