package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/closai/internal/logger"
)

const (
	siteURL   = "https://www.musinsa.com"
	detailURL = "https://goods-detail.musinsa.com"
	reviewURL = "https://goods.musinsa.com"
	imageURL  = "https://image.msscdn.net"
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultTimeout        = 10 * time.Second
	defaultReviewPageSize = 60
	defaultMaxRetries     = 2
	defaultBackoff        = 500 * time.Millisecond
	maxBackoff            = 5 * time.Second
)

// ErrNoData is returned when every source failed for a product.
var ErrNoData = errors.New("catalog returned no product data")

// Config configures the shop endpoints. Zero values fall back to the public shop.
type Config struct {
	SiteURL        string        `mapstructure:"site-url"`
	DetailURL      string        `mapstructure:"detail-url"`
	ReviewURL      string        `mapstructure:"review-url"`
	ImageURL       string        `mapstructure:"image-url"`
	UserAgent      string        `mapstructure:"user-agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ReviewPageSize int           `mapstructure:"review-page-size"`
	MaxRetries     int           `mapstructure:"max-retries"`
}

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string

	siteURL        string
	detailURL      string
	reviewURL      string
	imageURL       string
	reviewPageSize int
	maxRetries     int
	backoff        time.Duration
}

func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent:      orDefault(cfg.UserAgent, userAgent),
		siteURL:        strings.TrimRight(orDefault(cfg.SiteURL, siteURL), "/"),
		detailURL:      strings.TrimRight(orDefault(cfg.DetailURL, detailURL), "/"),
		reviewURL:      strings.TrimRight(orDefault(cfg.ReviewURL, reviewURL), "/"),
		imageURL:       strings.TrimRight(orDefault(cfg.ImageURL, imageURL), "/"),
		reviewPageSize: cfg.ReviewPageSize,
		maxRetries:     cfg.MaxRetries,
		backoff:        defaultBackoff,
	}
	if c.reviewPageSize <= 0 {
		c.reviewPageSize = defaultReviewPageSize
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}

	return c
}

// Product collects everything the shop knows about ref, a product URL or a
// bare goods number. Each source is optional: failures are logged and the
// corresponding fields stay empty. Only an unresolvable ref or a product with
// no data at all is an error.
func (c *Client) Product(ctx context.Context, ref string) (*Product, error) {
	goodsNo, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}

	p := &Product{
		GoodsNo: goodsNo,
		Link:    c.productURL(goodsNo),
	}
	log := logger.WithProduct(c.logger, goodsNo, "")

	var (
		detail  *detailPayload
		table   *tableResult
		reviews []Review
		g       errgroup.Group
	)

	g.Go(func() error {
		d, err := c.detail(ctx, goodsNo)
		if err != nil {
			log.Warn("goods detail unavailable", zap.Error(err))
			return nil
		}
		detail = d
		return nil
	})
	g.Go(func() error {
		t, err := c.sizeTable(ctx, goodsNo)
		if err != nil {
			log.Warn("actual size table unavailable", zap.Error(err))
			return nil
		}
		table = t
		return nil
	})
	g.Go(func() error {
		r, err := c.reviews(ctx, goodsNo)
		if err != nil {
			log.Warn("reviews unavailable", zap.Error(err))
			return nil
		}
		reviews = r
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sources := 0
	if detail != nil {
		detail.apply(p, c.imageURL)
		sources++
	}
	if table != nil {
		p.SizeTable = table.table
		sources++
	}
	if reviews != nil {
		p.Reviews = reviews
		sources++
	}

	if p.needsPage() {
		page, err := c.page(ctx, p.Link)
		if err != nil {
			log.Warn("product page unavailable", zap.Error(err))
		} else {
			page.apply(p, c.imageURL)
			sources++
		}
	}

	if sources == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, goodsNo)
	}

	p.Category1 = strings.TrimSpace(p.Category1)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SizeTable.Validate(); err != nil {
		log.Warn("size table is malformed", zap.Error(err))
	}

	log.Debug("product fetched",
		zap.String("title", p.Title),
		zap.Int("sizes", len(p.SizeTable.RowNames())),
		zap.Int("reviews", len(p.Reviews)),
		zap.Int("sources", sources),
	)

	return p, nil
}

func (c *Client) productURL(goodsNo string) string {
	return fmt.Sprintf("%s/products/%s", c.siteURL, goodsNo)
}

// absURL prefixes shop-relative image paths with the image CDN.
func (c *Client) absURL(path string) string {
	return absURL(c.imageURL, path)
}

func absURL(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	if strings.HasPrefix(path, "//") {
		return "https:" + path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
