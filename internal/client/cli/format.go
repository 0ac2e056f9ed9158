package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dustin/go-humanize"
)

func (a *App) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func writeTable(w io.Writer, docs []models.DocumentRecord) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, "No documents yet. Use 'add' to create one.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCAL\tAPP\tTYPE\tNAME\tNUMBER\tFAV\tSTATE\tUPDATED\tMEDIA")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			idOrDash(d.LocalID),
			idOrDash(int64(d.AppID)),
			orDash(string(d.Type)),
			orDash(d.Name),
			orDash(d.Number),
			star(d.Favorite),
			syncState(d),
			stamp(d.UpdatedAt),
			media(d),
		)
	}
	return tw.Flush()
}

func usageLine(snap models.QuotaSnapshot, sev models.Severity) string {
	line := fmt.Sprintf("Storage: %s of %s used, %s left",
		humanize.IBytes(uint64(snap.UsedBytes)),
		humanize.IBytes(uint64(snap.EffectiveQuotaBytes)),
		humanize.IBytes(uint64(snap.Remaining())))
	switch sev {
	case models.SeverityDanger:
		return "[!] " + line + ". Free up space or upgrade your plan."
	case models.SeverityWarning:
		return "[~] " + line + "."
	}
	return line + "."
}

func idOrDash(id int64) string {
	if id <= 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func star(b bool) string {
	if b {
		return "*"
	}
	return ""
}

func syncState(d models.DocumentRecord) string {
	if d.Synced {
		return "synced"
	}
	return "pending"
}

func stamp(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func media(d models.DocumentRecord) string {
	var sides []string
	if d.FrontMediaRef != "" {
		sides = append(sides, "front")
	}
	if d.BackMediaRef != "" {
		sides = append(sides, "back")
	}
	if len(sides) == 0 {
		return "-"
	}
	return strings.Join(sides, "+")
}
