package ctgov

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"trial-hand/config"
	"trial-hand/models"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Fetcher kapselt die Logik zur Interaktion mit ClinicalTrials.gov.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt eine neue Instanz des ClinicalTrials.gov-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "ctgov"
}

// FetchAll holt alle Studien für einen Tenant über die paginierte Suche.
// Die Required-Keywords des Tenants bilden eine OR-Query über query.cond.
// Es wird maximal bis CtgovMaxStudies akkumuliert; weitere Seiten werden
// bewusst verworfen. Aufrufer müssen das Ergebnis als Best-Effort-Stichprobe
// behandeln, nicht als vollständige Treffermenge.
func (f *Fetcher) FetchAll(ctx context.Context, tenantKey string) ([]Study, error) {
	profile, ok := models.ProfileFor(tenantKey)
	if !ok {
		return nil, fmt.Errorf("unbekannter tenant: %s", tenantKey)
	}

	log := f.Logger.With(zap.String("tenant", tenantKey))
	log.Info("Starte Studien-Fetch von ClinicalTrials.gov.")

	var allStudies []Study
	pageToken := ""

	for {
		pageURL := f.buildSearchURL(profile.Required, pageToken)
		log.Debug("Rufe Studies-URL auf", zap.String("url", pageURL))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			log.Error("Studies-Anfrage fehlgeschlagen", zap.Error(err))
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			log.Error("Registry hat nicht-200-Status zurückgegeben",
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)))
			return nil, fmt.Errorf("ctgov search failed: status %d", resp.StatusCode)
		}

		var page SearchResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			log.Error("Fehler beim Parsen der Studies-Antwort", zap.Error(err))
			return nil, err
		}

		allStudies = append(allStudies, page.Studies...)
		log.Debug("Seite geladen", zap.Int("page_count", len(page.Studies)), zap.Int("total", len(allStudies)))

		pageToken = page.NextPageToken
		if pageToken == "" || len(allStudies) >= f.Config.CtgovMaxStudies {
			break
		}
	}

	if len(allStudies) > f.Config.CtgovMaxStudies {
		allStudies = allStudies[:f.Config.CtgovMaxStudies]
	}
	log.Info("Studien-Fetch abgeschlossen", zap.Int("total_studies", len(allStudies)))
	return allStudies, nil
}

// buildSearchURL baut die URL für eine Seite der Studies-Suche.
func (f *Fetcher) buildSearchURL(terms []string, pageToken string) string {
	params := url.Values{}
	params.Set("query.cond", strings.Join(terms, " OR "))
	params.Set("pageSize", strconv.Itoa(f.Config.CtgovPageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	return f.Config.CtgovBaseURL + "/studies?" + params.Encode()
}
