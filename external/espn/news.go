package espn

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/courtsidehq/sportsdata/internal/domain/league"
)

// NewsItem is one league news article, filtered down to a player.
type NewsItem struct {
	Headline    string
	Description string
	Published   string
	Link        string
	Images      []string
	Raw         map[string]any
}

// GetPlayerNews fetches the league news feed and filters it to articles
// about one player. The feed endpoint has no per-athlete filter, so matching
// happens client-side: an athlete id tagged in the article's categories or
// links, or the player's name in the headline/description.
func (c *Client) GetPlayerNews(ctx context.Context, lg league.League, idOrName string, limit int) ([]NewsItem, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, crerr.Newf("empty player reference")
	}
	if limit <= 0 {
		limit = 10
	}

	payload, err := c.fetchJSON(ctx, c.siteURL(lg, "/news"), c.cacheTTL)
	if err != nil {
		if IsFetchError(err) {
			c.logger.WarnContext(ctx, "news unavailable", "league", lg.String(), "error", err)
			return nil, nil
		}
		return nil, err
	}

	athleteID := ""
	nameNeedle := ""
	if isNumericID(idOrName) {
		athleteID = idOrName
	} else {
		nameNeedle = NormalizeName(idOrName)
	}

	var out []NewsItem
	for _, item := range getSlice(payload, "articles", "items") {
		article := asMap(item)
		if article == nil {
			continue
		}
		if !articleMatches(article, athleteID, nameNeedle) {
			continue
		}
		out = append(out, normalizeArticle(article))
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func articleMatches(article map[string]any, athleteID, nameNeedle string) bool {
	if athleteID != "" {
		for _, cat := range getSlice(article, "categories") {
			m := asMap(cat)
			if m == nil {
				continue
			}
			if getString(m, "athleteId", "id") == athleteID && getString(m, "type") != "team" {
				return true
			}
			if getString(getMap(m, "athlete"), "id") == athleteID {
				return true
			}
		}
		for _, linkValue := range []string{
			getString(getMap(getMap(article, "links"), "web"), "href"),
			getString(article, "link"),
		} {
			if linkValue != "" && strings.Contains(linkValue, "/id/"+athleteID) {
				return true
			}
		}
		return false
	}

	if nameNeedle == "" {
		return false
	}
	haystack := NormalizeName(getString(article, "headline", "title") + " " + getString(article, "description"))
	return strings.Contains(haystack, nameNeedle)
}

func normalizeArticle(article map[string]any) NewsItem {
	var images []string
	for _, img := range getSlice(article, "images") {
		if href := getString(asMap(img), "url", "href"); href != "" {
			images = append(images, href)
		}
	}
	return NewsItem{
		Headline:    getString(article, "headline", "title"),
		Description: getString(article, "description"),
		Published:   getString(article, "published", "lastModified"),
		Link: firstNonEmpty(
			getString(getMap(getMap(article, "links"), "web"), "href"),
			getString(article, "link"),
		),
		Images: images,
		Raw:    article,
	}
}

// Contract is one season's contract entry from the core API.
type Contract struct {
	Year   int
	Salary float64
	Active bool
	Raw    map[string]any
}

// GetPlayerContracts fetches a player's contract history from the core API.
// A name reference is resolved to a numeric id through GetPlayer first.
func (c *Client) GetPlayerContracts(ctx context.Context, lg league.League, idOrName string) ([]Contract, error) {
	if err := c.requireLeague(lg); err != nil {
		return nil, err
	}
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, crerr.Newf("empty player reference")
	}

	athleteID := idOrName
	if !isNumericID(athleteID) {
		rec, err := c.GetPlayer(ctx, lg, idOrName)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}
		athleteID = numericIDFromRecord(*rec)
		if athleteID == "" {
			return nil, nil
		}
	}

	payload, err := c.fetchJSON(ctx, c.coreURL(lg, "/athletes/"+athleteID+"/contracts"), c.cacheTTL)
	if err != nil {
		if IsFetchError(err) {
			c.logger.WarnContext(ctx, "contracts unavailable", "league", lg.String(), "athlete", athleteID, "error", err)
			return nil, nil
		}
		return nil, err
	}

	items := getSlice(payload, "items")
	out := make([]Contract, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		if m == nil {
			continue
		}
		contract := Contract{Raw: m}
		if salary, ok := getFloat(m, "salary", "baseSalary"); ok {
			contract.Salary = salary
		}
		if year, ok := getFloat(m, "season", "year"); ok {
			contract.Year = int(year)
		} else if season := getMap(m, "season"); season != nil {
			if year, ok := getFloat(season, "year"); ok {
				contract.Year = int(year)
			}
		}
		if active := getBoolPtr(m, "active"); active != nil {
			contract.Active = *active
		}
		out = append(out, contract)
	}
	return out, nil
}
