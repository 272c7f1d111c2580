package features

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultASNEndpoint is the ip-api.com query; %s is replaced by the IP.
const DefaultASNEndpoint = "http://ip-api.com/json/%s?fields=status,message,as"

// ASNClient maps an IP address to the autonomous system announcing it.
// The endpoint may answer with ip-api.com style JSON ({"as": "AS15169
// Google LLC"}) or with a bare "AS15169" text body.
type ASNClient struct {
	endpoint string
	client   *http.Client
}

func NewASNClient(endpoint string, timeout time.Duration) *ASNClient {
	if endpoint == "" {
		endpoint = DefaultASNEndpoint
	}
	return &ASNClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type asnResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	AS      string `json:"as"`
}

func (c *ASNClient) ASN(ctx context.Context, ip string) (int64, error) {
	if ip == "" {
		return 0, ErrNoHost
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(c.endpoint, ip), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("asn %s: status %s: %w", ip, resp.Status, ErrMalformedResponse)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return 0, err
	}

	as := strings.TrimSpace(string(body))
	if strings.HasPrefix(as, "{") {
		var data asnResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return 0, fmt.Errorf("asn %s: %v: %w", ip, err, ErrMalformedResponse)
		}
		if data.Status != "" && data.Status != "success" {
			return 0, fmt.Errorf("asn %s: %s: %w", ip, data.Message, ErrNoRecords)
		}
		as = data.AS
	}

	return parseASN(as)
}

// parseASN strips the non-digit prefix of an AS designation and reads the
// number that follows: "AS15169 Google LLC" -> 15169.
func parseASN(s string) (int64, error) {
	s = strings.TrimLeftFunc(strings.TrimSpace(s), func(r rune) bool { return r < '0' || r > '9' })
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		s = s[:end]
	}
	if s == "" {
		return 0, fmt.Errorf("asn: no number: %w", ErrNoRecords)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("asn %q: %w", s, ErrMalformedResponse)
	}
	return n, nil
}
