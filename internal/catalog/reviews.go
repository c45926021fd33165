package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const anonymous = "익명"

type reviewPayload struct {
	No              string `mapstructure:"no"`
	Content         string `mapstructure:"content"`
	Grade           string `mapstructure:"grade"`
	CreateDate      string `mapstructure:"createDate"`
	UserImageFile   string `mapstructure:"userImageFile"`
	GoodsOptionName string `mapstructure:"goodsOptionName"`
	UserProfileInfo struct {
		UserNickName string `mapstructure:"userNickName"`
		BodySize     string `mapstructure:"bodySize"`
	} `mapstructure:"userProfileInfo"`
	Images []struct {
		ImageURL string `mapstructure:"imageUrl"`
	} `mapstructure:"images"`
}

func (c *Client) reviews(ctx context.Context, goodsNo string) ([]Review, error) {
	q := url.Values{}
	q.Set("page", "0")
	q.Set("pageSize", strconv.Itoa(c.reviewPageSize))
	q.Set("goodsNo", goodsNo)
	q.Set("sort", "up_cnt_desc")

	body, err := c.getJSON(ctx, c.reviewURL+"/api2/review/v1/view/list", q, c.productURL(goodsNo))
	if err != nil {
		return nil, err
	}

	list := field(field(body, "data"), "list")
	if list == nil {
		list = field(body, "list")
	}
	if list == nil {
		return []Review{}, nil
	}

	var payloads []reviewPayload
	if err := decode(list, &payloads); err != nil {
		return nil, fmt.Errorf("decoding reviews: %w", err)
	}

	reviews := make([]Review, 0, len(payloads))
	for _, p := range payloads {
		reviews = append(reviews, p.review(c.absURL))
	}
	return reviews, nil
}

func (p reviewPayload) review(abs func(string) string) Review {
	r := Review{
		No:        p.No,
		UserName:  strings.TrimSpace(p.UserProfileInfo.UserNickName),
		UserImage: abs(p.UserImageFile),
		Content:   strings.TrimSpace(p.Content),
		Rating:    5,
		Size:      strings.TrimSpace(p.GoodsOptionName),
		BodySize:  strings.TrimSpace(p.UserProfileInfo.BodySize),
	}
	if r.UserName == "" {
		r.UserName = anonymous
	}
	if len(p.Images) > 0 {
		r.ReviewImage = abs(p.Images[0].ImageURL)
	}
	if grade, err := strconv.Atoi(strings.TrimSpace(p.Grade)); err == nil && grade > 0 {
		r.Rating = grade
	}
	if date, _, _ := strings.Cut(p.CreateDate, "T"); date != "" {
		r.Date = date
	}
	return r
}
