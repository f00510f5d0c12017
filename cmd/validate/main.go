// Command validate performs integrity checks on the verification fixtures:
// request well-formedness, result invariants, and parity between the stored
// results and a fresh verification of the stored requests.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -requests data/mock/generated_requests.json \
//	  -results data/mock/generated_results.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/storm-track-verification/internal/domain"
	"github.com/jonboulle/clockwork"
)

// processedAt must match cmd/genmock.
var processedAt = time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

// tolerance for comparing recomputed distances, in nautical miles.
const tolerance = 1e-6

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	requestsPath := flag.String("requests", "", "path to the request fixture")
	resultsPath := flag.String("results", "", "path to the verified result fixture")
	maxGap := flag.Duration("max-gap", 12*time.Hour, "longest observation gap to interpolate across")
	flag.Parse()

	if *requestsPath == "" || *resultsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*requestsPath, *resultsPath, *maxGap); code != 0 {
		os.Exit(code)
	}
}

func run(requestsPath, resultsPath string, maxGap time.Duration) int {
	domain.SetClock(clockwork.NewFakeClockAt(processedAt))
	defer domain.SetClock(nil)

	fmt.Println("=== Track Verification Fixture Validation ===")
	fmt.Println()

	requests, err := loadJSON[domain.VerificationRequest](requestsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load requests: %v\n", err)
		return 1
	}
	results, err := loadJSON[domain.VerificationResult](resultsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load results: %v\n", err)
		return 1
	}
	fmt.Printf("Loaded %d requests, %d results\n", len(requests), len(results))

	phases := []*phase{
		validateRequests(requests),
		validateInvariants(results),
		validateParity(requests, results, maxGap),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       %s\n", e)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("RESULT: FAIL")
		return 1
	}
	fmt.Println("RESULT: PASS")
	return 0
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// validateRequests checks every request has a usable observed track and that
// coordinates lie in range.
func validateRequests(requests []domain.VerificationRequest) *phase {
	p := &phase{name: "Request integrity"}
	for i := range requests {
		req := &requests[i]
		label := fmt.Sprintf("request %d (%s/%s)", i, req.StormID, req.ForecastID)
		if req.StormID == "" {
			p.errorf("%s: missing storm_id", label)
		}

		usable := 0
		for j, obs := range req.Observed {
			if checkObservation(p, fmt.Sprintf("%s observed %d", label, j), obs) {
				usable++
			}
		}
		if usable < 2 {
			p.errorf("%s: %d usable observations, need 2", label, usable)
		}
		for j, obs := range req.Forecast {
			checkObservation(p, fmt.Sprintf("%s forecast %d", label, j), obs)
		}
	}
	return p
}

// checkObservation reports range errors and whether obs is timed and positioned.
func checkObservation(p *phase, label string, obs domain.RawObservation) bool {
	f, err := domain.FixFromObservation(obs)
	if err != nil {
		p.errorf("%s: %v", label, err)
		return false
	}
	lat, lon := f.Latitude(), f.Longitude()
	if lat != nil && (*lat < -90 || *lat > 90) {
		p.errorf("%s: latitude %g out of range", label, *lat)
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		p.errorf("%s: longitude %g out of range", label, *lon)
	}
	return f.Time() != nil && lat != nil && lon != nil
}

// validateInvariants checks properties every verified point must satisfy.
func validateInvariants(results []domain.VerificationResult) *phase {
	p := &phase{name: "Result invariants"}
	for i := range results {
		r := &results[i]
		for j := range r.Points {
			checkPoint(p, fmt.Sprintf("result %s point %d", r.ID, j), &r.Points[j])
		}
	}
	return p
}

func checkPoint(p *phase, label string, pt *domain.PointError) {
	if pt.Observed == nil || pt.Forecast == nil {
		p.errorf("%s: missing observed or forecast fix", label)
		return
	}

	if lon := pt.Observed.Longitude(); lon == nil || *lon < -180 || *lon > 180 {
		p.errorf("%s: interpolated longitude %s out of range", label, ptrFloat(lon))
	}
	if v := pt.Observed.AlongTrackVector(); v == nil || *v < 0 || *v >= 2*math.Pi {
		p.errorf("%s: along-track vector %s outside [0, 2pi)", label, ptrFloat(v))
	}
	if t := pt.Observed.Time(); t == nil || !t.Equal(pt.ValidTime) {
		p.errorf("%s: observed time does not match valid time %s", label, pt.ValidTime.Format(time.RFC3339))
	}
	if pt.DirectNM < 0 {
		p.errorf("%s: negative direct error %g", label, pt.DirectNM)
	}
	if !floatEq(pt.DirectKM, pt.DirectNM*1.852) {
		p.errorf("%s: direct_km %g does not match direct_nm %g", label, pt.DirectKM, pt.DirectNM)
	}
	if math.Abs(pt.GreatCircleCTENM) > pt.DirectNM+tolerance {
		p.errorf("%s: |CTE| %g exceeds direct error %g", label, pt.GreatCircleCTENM, pt.DirectNM)
	}
	if math.Abs(pt.GreatCircleATENM) > pt.DirectNM+tolerance {
		p.errorf("%s: |ATE| %g exceeds direct error %g", label, pt.GreatCircleATENM, pt.DirectNM)
	}
}

// validateParity re-verifies every request and compares with the stored result.
func validateParity(requests []domain.VerificationRequest, results []domain.VerificationResult, maxGap time.Duration) *phase {
	p := &phase{name: "Recomputed parity"}
	if len(requests) != len(results) {
		p.errorf("request count %d != result count %d", len(requests), len(results))
		return p
	}

	for i := range requests {
		want, err := domain.Verify(requests[i], maxGap)
		if err != nil {
			p.errorf("request %d: verify: %v", i, err)
			continue
		}
		compareResults(p, &want, &results[i])
	}
	return p
}

func compareResults(p *phase, want, got *domain.VerificationResult) {
	label := want.ID
	if want.ID != got.ID {
		p.errorf("%s: stored id %s", label, got.ID)
	}
	if want.Skipped != got.Skipped {
		p.errorf("%s: skipped want=%d got=%d", label, want.Skipped, got.Skipped)
	}
	if !want.ProcessedAt.Equal(got.ProcessedAt) {
		p.errorf("%s: processed_at want=%s got=%s", label,
			want.ProcessedAt.Format(time.RFC3339), got.ProcessedAt.Format(time.RFC3339))
	}
	if len(want.Points) != len(got.Points) {
		p.errorf("%s: points want=%d got=%d", label, len(want.Points), len(got.Points))
		return
	}

	for j := range want.Points {
		w, g := &want.Points[j], &got.Points[j]
		pl := fmt.Sprintf("%s point %d", label, j)
		if !w.ValidTime.Equal(g.ValidTime) {
			p.errorf("%s: valid_time mismatch", pl)
		}
		distances := []struct {
			name      string
			want, got float64
		}{
			{"along_track_nm", w.AlongTrackNM, g.AlongTrackNM},
			{"across_track_nm", w.AcrossTrackNM, g.AcrossTrackNM},
			{"direct_nm", w.DirectNM, g.DirectNM},
			{"direct_km", w.DirectKM, g.DirectKM},
			{"great_circle_ate_nm", w.GreatCircleATENM, g.GreatCircleATENM},
			{"great_circle_cte_nm", w.GreatCircleCTENM, g.GreatCircleCTENM},
		}
		for _, d := range distances {
			if !floatEq(d.want, d.got) {
				p.errorf("%s: %s want=%g got=%g", pl, d.name, d.want, d.got)
			}
		}
		if !ptrFloatEq(w.PressureError, g.PressureError) {
			p.errorf("%s: pressure_error want=%s got=%s", pl, ptrFloat(w.PressureError), ptrFloat(g.PressureError))
		}
		if !ptrFloatEq(w.MeanWindError, g.MeanWindError) {
			p.errorf("%s: mean_wind_error want=%s got=%s", pl, ptrFloat(w.MeanWindError), ptrFloat(g.MeanWindError))
		}
		if !ptrIntEq(w.CategoryError, g.CategoryError) {
			p.errorf("%s: category_error mismatch", pl)
		}
	}
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func ptrFloatEq(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEq(*a, *b)
}

func ptrIntEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func ptrFloat(v *float64) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%g", *v)
}
