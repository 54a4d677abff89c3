package ectapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
	"twinwatch/lib/restyutil"
	"twinwatch/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNotFound reports that the API has no results published under a
// given area code.
var ErrNotFound = fmt.Errorf("no results published for this area")

// MPEntry is one candidate's result in a constituency race. The API
// returns entries sorted by vote total descending.
type MPEntry struct {
	CandidateCode  string `json:"candidateCode"`
	CandidateTitle string `json:"candidateTitle,omitempty"`
	PartyCode      string `json:"partyCode"`
	VoteTotal      int64  `json:"voteTotal"`
	Rank           int    `json:"rank"`
}

// PLEntry is one party's party-list result within a single area.
type PLEntry struct {
	PartyCode string `json:"partyCode"`
	VoteTotal int64  `json:"voteTotal"`
	Rank      int    `json:"rank"`
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "ectapi/http")
	restyutil.InstrumentClient(client, restyInstrumentOutput)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

type resultSet[T any] struct {
	Entries []T `json:"entries"`
}

func fetchEntries[T any](ctx context.Context, c *Client, dataset, area string) ([]T, error) {
	ctx, span := tracer.Start(ctx, "fetchEntries")
	defer span.End()
	span.SetAttributes(
		attribute.String("dataset", dataset),
		attribute.String("area", area),
	)

	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/%s/%s.json", dataset, area))
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		span.RecordError(err)
		return nil, err
	}
	if res.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode() != http.StatusOK {
		err := fmt.Errorf("fetch %s results for %s: unexpected status '%s'", dataset, area, res.Status())
		span.SetStatus(codes.Error, "unexpected status")
		span.RecordError(err)
		return nil, err
	}

	var body resultSet[T]
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		span.SetStatus(codes.Error, "malformed response")
		span.RecordError(err)
		return nil, err
	}
	return body.Entries, nil
}

// FetchMP returns the constituency race results for an area code.
// Returns ErrNotFound when the API has no results under that code.
func (c *Client) FetchMP(ctx context.Context, area string) ([]MPEntry, error) {
	return fetchEntries[MPEntry](ctx, c, "mp", area)
}

// FetchPL returns the party-list results for an area code. Returns
// ErrNotFound when the API has no results under that code.
func (c *Client) FetchPL(ctx context.Context, area string) ([]PLEntry, error) {
	return fetchEntries[PLEntry](ctx, c, "pl", area)
}
