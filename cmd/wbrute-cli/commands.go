package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/adapters/candidates"
	"github.com/lcalzada-xor/wbrute/internal/adapters/reporting"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/services/operations"
	reportingsvc "github.com/lcalzada-xor/wbrute/internal/core/services/reporting"
)

type AdaptersCmd struct{}

func (c *AdaptersCmd) Run(rt *runtime) error {
	adapters, err := rt.app.Discovery.ListAdapters(rt.ctx)
	if err != nil {
		return err
	}
	if len(adapters) == 0 {
		fmt.Fprintln(rt.out, "no wireless adapters found")
		return nil
	}
	tw := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, a := range adapters {
		fmt.Fprintf(tw, "%s\t%s\n", a.ID, a.Name)
	}
	return tw.Flush()
}

type ScanCmd struct {
	Adapter string `arg:"" help:"Adapter to scan with"`
}

func (c *ScanCmd) Run(rt *runtime) error {
	networks, err := rt.app.Discovery.Scan(rt.ctx, c.Adapter)
	if err != nil {
		return err
	}
	printNetworks(rt.out, networks)
	return nil
}

type ImportCmd struct {
	Capture string `arg:"" help:"pcap or pcapng file" type:"existingfile"`
}

func (c *ImportCmd) Run(rt *runtime) error {
	networks, err := rt.app.Discovery.ImportCapture(rt.ctx, c.Capture)
	if err != nil {
		return err
	}
	printNetworks(rt.out, networks)
	return nil
}

func printNetworks(w io.Writer, networks []domain.Network) {
	if len(networks) == 0 {
		fmt.Fprintln(w, "no networks found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SSID\tBSSID\tSECURITY\tSOURCE")
	for _, n := range networks {
		security := orDash(n.Security)
		if !n.PassphraseBased() {
			security += " (no passphrase)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.SSID, orDash(n.BSSID), security, n.Source)
	}
	tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type AttackCmd struct {
	Target     string        `arg:"" help:"SSID of the target network"`
	Adapter    []string      `short:"a" name:"adapter" help:"Adapter to use; repeat for several"`
	Mode       string        `help:"single or multiple (default: single with one adapter, multiple otherwise)"`
	Primary    string        `short:"p" help:"Primary wordlist: file path or db:<name>"`
	Secondary  string        `short:"s" help:"Secondary wordlist used by multi-adapter attacks"`
	Preset     string        `help:"Named preset from the config file"`
	Hidden     bool          `help:"Target does not broadcast its SSID"`
	Authorized bool          `help:"Confirm you are authorized to test the target network"`
	Interval   time.Duration `default:"2s" help:"Progress report interval"`
	Verbose    bool          `short:"v" help:"Print every failed attempt"`
}

func (c *AttackCmd) Run(rt *runtime) error {
	ops := rt.app.Operations

	// Subscribe first so the start event is not missed.
	events, unsubscribe := ops.Subscribe()
	defer unsubscribe()

	id, err := ops.Launch(rt.ctx, operations.LaunchRequest{
		Preset:              c.Preset,
		Target:              c.Target,
		Hidden:              c.Hidden,
		Mode:                domain.AdapterMode(c.Mode),
		Adapters:            c.Adapter,
		Primary:             c.Primary,
		Secondary:           c.Secondary,
		LegalAcknowledgment: c.Authorized,
	})
	if errors.Is(err, domain.ErrLegalAckRequired) {
		return fmt.Errorf("%w: pass --authorized once you hold permission to test this network", err)
	}
	if err != nil {
		return err
	}

	done := make(chan struct{})
	var outcome domain.AttackOutcome
	var waitErr error
	go func() {
		defer close(done)
		outcome, waitErr = rt.app.Controller.Wait(context.Background())
	}()

	sigCtx, stop := signal.NotifyContext(rt.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	interrupt := sigCtx.Done()

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	fmt.Fprintf(rt.out, "attack %s started\n", id)
	for {
		select {
		case ev := <-events:
			printEvent(rt.out, ev, c.Verbose)
		case <-ticker.C:
			fmt.Fprintln(rt.out, formatStatus(ops.Status(rt.ctx)))
		case <-interrupt:
			interrupt = nil
			fmt.Fprintln(rt.out, "interrupted, cancelling (in-flight attempts finish first)...")
			if err := ops.Cancel(rt.ctx); err != nil {
				return err
			}
		case <-done:
			drainEvents(rt.out, events, c.Verbose)
			if waitErr != nil {
				return waitErr
			}
			return outcomeResult(rt.out, outcome)
		}
	}
}

func drainEvents(w io.Writer, events <-chan domain.AttackEvent, verbose bool) {
	for {
		select {
		case ev := <-events:
			printEvent(w, ev, verbose)
		default:
			return
		}
	}
}

func printEvent(w io.Writer, ev domain.AttackEvent, verbose bool) {
	switch ev.Type {
	case domain.EventAttemptStarted, domain.EventAttackFinished:
		return
	case domain.EventAttemptFailed:
		if !verbose {
			return
		}
		msg := fmt.Sprintf("[%s] #%d %q rejected", ev.Adapter, ev.CandidateIndex+1, ev.Candidate)
		if ev.Error != "" {
			msg += ": " + ev.Error
		}
		fmt.Fprintln(w, msg)
	case domain.EventCredentialFound:
		fmt.Fprintf(w, "[%s] passphrase found: %q\n", ev.Adapter, ev.Candidate)
	case domain.EventWorkerFailed:
		fmt.Fprintf(w, "[%s] adapter failed: %s\n", ev.Adapter, ev.Error)
	case domain.EventWorkerExhausted, domain.EventWorkerStopped:
		fmt.Fprintf(w, "[%s] %s\n", ev.Adapter, strings.TrimPrefix(string(ev.Type), "worker."))
	default:
		line := string(ev.Type)
		if ev.Message != "" {
			line += ": " + ev.Message
		}
		fmt.Fprintln(w, line)
	}
}

func formatStatus(st domain.AttackStatus) string {
	eta := "unknown"
	if st.ETASeconds >= 0 {
		eta = (time.Duration(st.ETASeconds) * time.Second).String()
	}
	return fmt.Sprintf("%s %d/%d (%.1f%%) eta %s adapter=%s", st.Phase, st.Completed, st.Total, st.Progress*100, eta, st.CurrentAdapter)
}

// outcomeResult turns an outcome into the command's exit status.
func outcomeResult(w io.Writer, o domain.AttackOutcome) error {
	for adapter, msg := range o.WorkerErrors {
		fmt.Fprintf(w, "adapter %s: %s\n", adapter, msg)
	}
	switch o.Kind {
	case domain.OutcomeSuccess:
		fmt.Fprintf(w, "SUCCESS: passphrase %q found with %s after %d attempts\n", o.Candidate, o.Adapter.ID, o.Attempts)
		return nil
	case domain.OutcomeCancelled:
		return &exitCodeError{code: exitCancelled, msg: fmt.Sprintf("cancelled after %d attempts", o.Attempts)}
	default:
		return &exitCodeError{code: exitExhausted, msg: fmt.Sprintf("exhausted: no candidate matched (%d attempts)", o.Attempts)}
	}
}

type WordlistCmd struct {
	Store WordlistStoreCmd `cmd:"" help:"Store a wordlist file under a name"`
	Ls    WordlistLsCmd    `cmd:"" help:"List stored wordlists"`
}

type WordlistStoreCmd struct {
	Name string `arg:"" help:"Name to reference the list as db:<name>"`
	File string `arg:"" help:"Text file, one candidate per line" type:"existingfile"`
}

func (c *WordlistStoreCmd) Run(rt *runtime) error {
	db := rt.app.Wordlists()
	if db == nil {
		return errors.New("no wordlist store configured (use --wordlist-db or WBRUTE_WORDLIST_DB)")
	}
	list, err := candidates.FileSource{}.Load(rt.ctx, c.File)
	if err != nil {
		return err
	}
	if err := db.Store(rt.ctx, c.Name, list.Entries()); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "stored %d candidates as db:%s\n", list.Len(), c.Name)
	return nil
}

type WordlistLsCmd struct{}

func (c *WordlistLsCmd) Run(rt *runtime) error {
	db := rt.app.Wordlists()
	if db == nil {
		return errors.New("no wordlist store configured (use --wordlist-db or WBRUTE_WORDLIST_DB)")
	}
	lists, err := db.Lists(rt.ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tENTRIES")
	for _, l := range lists {
		fmt.Fprintf(tw, "db:%s\t%d\n", l.Name, l.Entries)
	}
	return tw.Flush()
}

type HistoryCmd struct {
	Limit int `default:"20" help:"Number of attacks to show"`
}

func (c *HistoryCmd) Run(rt *runtime) error {
	records, err := rt.app.History.List(rt.ctx, c.Limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTARGET\tOUTCOME\tATTEMPTS\tDURATION\tSTARTED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			r.ID, r.Target, r.Outcome, r.Completed, r.TotalAttempts,
			r.Duration().Round(time.Second), r.StartTime.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

type ReportCmd struct {
	ID     string `arg:"" help:"Attack ID"`
	Output string `short:"o" help:"Output file (default wbrute_attack_<id>.pdf)" type:"path"`
	Reveal bool   `help:"Print the recovered passphrase unmasked"`
}

func (c *ReportCmd) Run(rt *runtime) error {
	record, err := rt.app.History.Get(rt.ctx, c.ID)
	if err != nil {
		return err
	}

	exporter := reporting.NewPDFExporter(reportingsvc.NewRecommendationEngine())
	exporter.RevealCredential = c.Reveal
	pdf, err := exporter.ExportAttack(*record)
	if err != nil {
		return err
	}

	out := c.Output
	if out == "" {
		out = fmt.Sprintf("wbrute_attack_%s.pdf", record.ID)
	}
	if err := os.WriteFile(out, pdf, 0600); err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "report written to %s\n", out)
	return nil
}
