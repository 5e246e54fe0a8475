package espnrss

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/radieske/betboard/pkg/contracts/odds"
)

// Name identifica o provider de notícias.
const Name = "espn_rss"

// Feeds RSS por chave de liga; ligas desconhecidas caem no feed geral.
var feeds = map[string]string{
	"americanfootball_nfl":   "https://www.espn.com/espn/rss/nfl/news",
	"americanfootball_ncaaf": "https://www.espn.com/espn/rss/ncf/news",
	"ufc":                    "https://www.espn.com/espn/rss/mma/news",
}

const fallbackFeed = "https://www.espn.com/espn/rss/news"

// Client busca manchetes nos feeds RSS da ESPN.
type Client struct {
	HTTP *http.Client
}

func New() *Client {
	return &Client{HTTP: &http.Client{Timeout: 15 * time.Second}}
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// FetchHeadlines retorna até `limit` manchetes da liga.
func (c *Client) FetchHeadlines(ctx context.Context, leagueKey string, limit int) ([]odds.Headline, error) {
	feedURL, ok := feeds[leagueKey]
	if !ok {
		feedURL = fallbackFeed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("espn rss get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("espn rss get: http %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	return parseFeed(body, limit)
}

// parseFeed decodifica o XML do feed. Datas de publicação inválidas viram
// zero em vez de erro.
func parseFeed(body []byte, limit int) ([]odds.Headline, error) {
	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("espn rss parse: %w", err)
	}

	items := doc.Channel.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	headlines := make([]odds.Headline, 0, len(items))
	for _, item := range items {
		headlines = append(headlines, odds.Headline{
			Title:       item.Title,
			URL:         item.Link,
			PublishedAt: parsePubDate(item.PubDate),
			Source:      "ESPN",
		})
	}
	return headlines, nil
}

func parsePubDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
