package testctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"

	"creditrisk/internal/prompt"
	"creditrisk/pkg/types"
)

// smoke starts `creditrisk serve` on a free port, waits for readiness and
// runs the example record through /inference/parallel.
func smoke(cfg *Config) error {
	port, err := preferOrFree(cfg.Port)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Timeout)*time.Second)
	defer cancel()

	procs := NewProcManager()
	defer procs.KillAll()
	srvCtx, srvCancel := context.WithCancel(context.Background())
	defer srvCancel()
	srv := command(srvCtx, Cmd{Path: "go", Args: []string{
		"run", "./cmd/creditrisk",
		"--models-dir", cfg.ModelsDir,
		"serve", "--addr", fmt.Sprintf("127.0.0.1:%d", port),
	}})
	srv.Stdout = os.Stdout
	srv.Stderr = os.Stderr
	if err := srv.Start(); err != nil {
		return err
	}
	procs.Add(srv)

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	info("[smoke] Waiting for %s/readyz", base)
	if err := waitHTTP(ctx, base+"/readyz", http.StatusOK, time.Second); err != nil {
		return err
	}
	res, err := queryParallel(ctx, base, cfg.Backends, prompt.ExampleRecord())
	if err != nil {
		return err
	}
	printParallel(os.Stdout, res)
	if res.Succeeded == 0 {
		return errors.New("no backend produced an answer")
	}
	return nil
}

// queryParallel posts rec to /inference/parallel. A 502 still carries the
// per-backend results and is not an error here.
func queryParallel(ctx context.Context, base, backends string, rec prompt.CreditRecord) (types.ParallelResponse, error) {
	var out types.ParallelResponse
	body, err := json.Marshal(types.CreditRiskRequest{
		Age:               rec.Age,
		Occupation:        rec.Occupation,
		AnnualIncome:      rec.AnnualIncome,
		OutstandingDebt:   rec.OutstandingDebt,
		CreditUtilization: rec.CreditUtilization,
		PaymentBehavior:   rec.PaymentBehavior,
	})
	if err != nil {
		return out, err
	}
	u := base + "/inference/parallel"
	if backends != "" {
		u += "?backends=" + url.QueryEscape(backends)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadGateway {
		return out, fmt.Errorf("parallel: %s: %s", resp.Status, bytes.TrimSpace(raw))
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parallel: decode: %w", err)
	}
	return out, nil
}

func printParallel(w io.Writer, res types.ParallelResponse) {
	names := make([]string, 0, len(res.Results))
	for n := range res.Results {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		r := res.Results[n]
		status := color.GreenString(r.Status)
		if r.Status != "ok" {
			status = color.RedString(r.Status)
		}
		fmt.Fprintf(w, "%-8s %s %6.2fs label=%q", n, status, r.ProcessingTime, r.Label)
		if r.Error != "" {
			fmt.Fprintf(w, " error=%q", r.Error)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "total %.2fs, %d/%d succeeded\n", res.TotalProcessingTime, res.Succeeded, len(res.Results))
}
