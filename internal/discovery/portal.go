package discovery

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/tender-bid/internal/tender"
)

const (
	defaultUserAgent = "spigell/tender-bid"
	contentType      = "application/json"
	contentEncoding  = "gzip, deflate, br"
	// Max value for search per page.
	perPage = "100"
)

// Portal pulls open tenders from a paginated JSON API.
type Portal struct {
	BaseURL    string
	Path       string
	Query      url.Values
	HTTPClient *http.Client
	UserAgent  string

	token  string
	logger *zap.Logger
}

// ItemResponse is one page of portal results.
type ItemResponse struct {
	Items   []any
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

func NewPortal(baseURL, path, token string, logger *zap.Logger) *Portal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Portal{
		BaseURL: baseURL,
		Path:    path,
		Query:   url.Values{},
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: defaultUserAgent,
		token:     token,
		logger:    logger,
	}
}

func (p *Portal) Discover(ctx context.Context) (*tender.Tenders, error) {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = append([]string(nil), v...)
	}
	// Set per_page max as possible. It should be faster.
	if q.Get("per_page") == "" {
		q.Set("per_page", perPage)
	}

	items, err := p.GetItems(ctx, p.BaseURL+p.Path, q)
	if err != nil {
		return nil, err
	}

	return decodeTenders(items, KindPortal)
}

// GetItems requests every page of url and returns the collected items.
func (p *Portal) GetItems(ctx context.Context, url string, q url.Values) ([]any, error) {
	var items []any

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req = p.setHeaders(req)
	req.Header.Set("Content-Type", contentType)
	req.URL.RawQuery = q.Encode()

	response, err := p.fetch(req)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("got response from tender portal", zap.Int("pages", response.Pages), zap.Int("found", response.Found))

	items = append(items, response.Items...)

	for response.Page < (response.Pages - 1) {
		p.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", response.Page+1, response.Pages),
		))

		response, err = p.fetch(addPage(req, response.Page+1))
		if err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
	}

	return items, nil
}

func (p *Portal) fetch(req *http.Request) (*ItemResponse, error) {
	p.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	var response ItemResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, err
	}

	return &response, nil
}

func (p *Portal) setHeaders(req *http.Request) *http.Request {
	if p.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.token))
	}
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// addPage adds page parameter to request URL.
func addPage(req *http.Request, page int) *http.Request {
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	return req
}
