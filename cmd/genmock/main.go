// Command genmock reads a best-track CSV and generates verification fixtures.
// For every 00Z and 12Z analysis it builds a synthetic forecast by displacing
// the later observations, then verifies it with the actual domain package so
// the result fixture matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/besttrack/sample_track.csv \
//	  -requests-out data/mock/generated_requests.json \
//	  -results-out data/mock/generated_results.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-track-verification/internal/domain"
	"github.com/jonboulle/clockwork"
)

// processedAt is the fixed clock shared with cmd/validate.
var processedAt = time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

// leadTimes are the forecast lead times generated for each analysis.
var leadTimes = []time.Duration{12 * time.Hour, 24 * time.Hour, 36 * time.Hour, 48 * time.Hour}

// Synthetic forecast drift per 12 hours of lead time.
const (
	driftLonPer12h      = 0.15
	driftLatPer12h      = -0.1
	pressureBiasPer12h  = 2.0
	meanWindBiasPer12h  = -2.5
	defaultMaxGapHours  = 12
	analysisHourModulus = 12
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "best-track CSV file")
	requestsOut := flag.String("requests-out", "", "output path for the request fixture")
	resultsOut := flag.String("results-out", "", "output path for the verified result fixture")
	maxGap := flag.Duration("max-gap", defaultMaxGapHours*time.Hour, "longest observation gap to interpolate across")
	flag.Parse()

	if *csvPath == "" || *requestsOut == "" || *resultsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -requests-out, -results-out")
	}

	domain.SetClock(clockwork.NewFakeClockAt(processedAt))
	defer domain.SetClock(nil)

	tracks, order, err := readTracks(*csvPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *csvPath, err)
	}

	var requests []domain.VerificationRequest //nolint:prealloc // size depends on CSV file contents
	for _, stormID := range order {
		reqs, err := buildRequests(stormID, tracks[stormID])
		if err != nil {
			return fmt.Errorf("storm %s: %w", stormID, err)
		}
		requests = append(requests, reqs...)
		log.Printf("%s: %d observations, %d forecasts", stormID, len(tracks[stormID]), len(reqs))
	}

	results := make([]domain.VerificationResult, 0, len(requests))
	for _, req := range requests {
		result, err := domain.Verify(req, *maxGap)
		if err != nil {
			return fmt.Errorf("verify %s/%s: %w", req.StormID, req.ForecastID, err)
		}
		results = append(results, result)
	}

	if err := writeJSON(*requestsOut, requests); err != nil {
		return fmt.Errorf("writing request fixture: %w", err)
	}
	log.Printf("wrote request fixture: %s", *requestsOut)

	if err := writeJSON(*resultsOut, results); err != nil {
		return fmt.Errorf("writing result fixture: %w", err)
	}
	log.Printf("wrote result fixture: %s", *resultsOut)

	printStats(results)
	return nil
}

// readTracks groups CSV rows by storm, preserving first-seen storm order.
func readTracks(path string) (map[string][]domain.RawObservation, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}

	tracks := map[string][]domain.RawObservation{}
	var order []string
	for line, row := range rows[1:] {
		stormID := get(row, colIdx, "storm_id")
		if stormID == "" {
			continue
		}

		obs := domain.RawObservation{Time: get(row, colIdx, "time")}
		fields := []struct {
			col string
			dst **float64
		}{
			{"latitude", &obs.Latitude},
			{"longitude", &obs.Longitude},
			{"pressure_central", &obs.PressureCentral},
			{"wind_spd", &obs.WindSpd},
			{"wind_gust", &obs.WindGust},
			{"category", &obs.Category},
		}
		for _, fd := range fields {
			v, err := parseOptional(get(row, colIdx, fd.col))
			if err != nil {
				return nil, nil, fmt.Errorf("line %d %s: %w", line+2, fd.col, err)
			}
			*fd.dst = v
		}

		if _, seen := tracks[stormID]; !seen {
			order = append(order, stormID)
		}
		tracks[stormID] = append(tracks[stormID], obs)
	}
	return tracks, order, nil
}

// buildRequests creates one request per analysis time. Each forecast fix is
// the observation at analysis + lead, displaced and biased in proportion to
// the lead time.
func buildRequests(stormID string, observed []domain.RawObservation) ([]domain.VerificationRequest, error) {
	fixes := make([]*domain.Fix, 0, len(observed))
	for i, raw := range observed {
		f, err := domain.FixFromObservation(raw)
		if err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
		if f.Time() == nil {
			continue
		}
		fixes = append(fixes, f)
	}
	sort.SliceStable(fixes, func(i, j int) bool { return fixes[i].Time().Before(*fixes[j].Time()) })

	byTime := make(map[time.Time]*domain.Fix, len(fixes))
	for _, f := range fixes {
		byTime[*f.Time()] = f
	}

	var requests []domain.VerificationRequest
	for _, analysis := range fixes {
		at := *analysis.Time()
		if at.Hour()%analysisHourModulus != 0 {
			continue
		}

		var forecast []domain.RawObservation
		for _, lead := range leadTimes {
			target, ok := byTime[at.Add(lead)]
			if !ok {
				continue
			}
			forecast = append(forecast, synthesize(target, lead))
		}
		if len(forecast) == 0 {
			continue
		}

		requests = append(requests, domain.VerificationRequest{
			StormID:    stormID,
			ForecastID: "SYN-" + at.Format("2006010215"),
			Observed:   observed,
			Forecast:   forecast,
		})
	}
	return requests, nil
}

func synthesize(target *domain.Fix, lead time.Duration) domain.RawObservation {
	steps := lead.Hours() / 12

	fc := target.DisplacedBy(driftLonPer12h*steps, driftLatPer12h*steps)
	fc.SetPressure(offset(fc.Pressure(), pressureBiasPer12h*steps))
	fc.SetMeanWind(offset(fc.MeanWind(), meanWindBiasPer12h*steps))
	fc.SetWindGust(nil)
	return domain.ObservationFromFix(fc)
}

func offset(v *float64, by float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(*v + by)
}

func parseOptional(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// leadStats accumulates error statistics for one lead time.
type leadStats struct {
	count    int
	direct   float64
	along    float64
	absCross float64
}

func printStats(results []domain.VerificationResult) {
	byLead := map[time.Duration]*leadStats{}
	var points, skipped int
	for i := range results {
		r := &results[i]
		skipped += r.Skipped
		analysis, err := time.Parse("2006010215", strings.TrimPrefix(r.ForecastID, "SYN-"))
		if err != nil {
			continue
		}
		for j := range r.Points {
			p := &r.Points[j]
			points++
			lead := p.ValidTime.Sub(analysis)
			s, ok := byLead[lead]
			if !ok {
				s = &leadStats{}
				byLead[lead] = s
			}
			s.count++
			s.direct += p.DirectNM
			s.along += p.AlongTrackNM
			s.absCross += math.Abs(p.AcrossTrackNM)
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Requests: %d\n", len(results))
	fmt.Printf("Points: %d, skipped: %d\n", points, skipped)

	leads := make([]time.Duration, 0, len(byLead))
	for l := range byLead {
		leads = append(leads, l)
	}
	sort.Slice(leads, func(i, j int) bool { return leads[i] < leads[j] })
	for _, l := range leads {
		s := byLead[l]
		n := float64(s.count)
		fmt.Printf("  +%3.0fh n=%d direct=%.1f nm along=%.1f nm |across|=%.1f nm\n",
			l.Hours(), s.count, s.direct/n, s.along/n, s.absCross/n)
	}
}
