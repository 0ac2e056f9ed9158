package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/services"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/filex"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/schema"
)

const (
	usageAdd    = "add <type> <name> [number] [front] [back]"
	usageEdit   = "edit <localId> field=value ..."
	usageFav    = "fav <localId>"
	usageDelete = "delete <localId>"
)

func (a *App) List(ctx context.Context, args []string) error {
	res, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}

	switch {
	case !identity.IsValidUserID(a.config.UserID):
		a.setMode(ModeAnonymous)
	case res.Remote:
		a.setMode(ModeOnline)
	default:
		a.setMode(ModeOffline)
	}

	if err := writeTable(a.outWriter(), res.Documents); err != nil {
		return err
	}
	a.printBanner(ctx)
	return nil
}

func (a *App) Add(ctx context.Context, args []string) error {
	args = unquote(args)
	if len(args) < 2 {
		return fmt.Errorf("%w; usage: %s", errUsage, usageAdd)
	}

	if err := a.quota.CanCreate(ctx); err != nil {
		return err
	}

	t := schema.ParseDocType(args[0])
	rec := models.DocumentRecord{
		Type:     t,
		Category: schema.DefaultCategory(t),
		Name:     args[1],
	}
	if len(args) > 2 {
		rec.Number = args[2]
	}

	var err error
	if len(args) > 3 && args[3] != "" {
		if rec.FrontMediaRef, err = filex.ImportMedia(a.mediaDir, args[3]); err != nil {
			return err
		}
	}
	if len(args) > 4 && args[4] != "" {
		if rec.BackMediaRef, err = filex.ImportMedia(a.mediaDir, args[4]); err != nil {
			return err
		}
	}

	res, err := a.mutator.Create(ctx, rec)
	a.report("Added", res)
	return quotaHint(err)
}

func (a *App) Edit(ctx context.Context, args []string) error {
	args = unquote(args)
	id, err := parseLocalID(args, usageEdit)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w; usage: %s", errUsage, usageEdit)
	}

	patch, err := models.PatchFromAssignments(args[1:])
	if err != nil {
		return err
	}
	if patch.FrontMediaRef, err = a.importRef(patch.FrontMediaRef); err != nil {
		return err
	}
	if patch.BackMediaRef, err = a.importRef(patch.BackMediaRef); err != nil {
		return err
	}

	res, err := a.mutator.Update(ctx, id, patch)
	a.report("Updated", res)
	return quotaHint(err)
}

func (a *App) Favorite(ctx context.Context, args []string) error {
	id, err := parseLocalID(args, usageFav)
	if err != nil {
		return err
	}
	res, err := a.mutator.ToggleFavorite(ctx, id)
	a.report("Favorite toggled", res)
	return quotaHint(err)
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseLocalID(args, usageDelete)
	if err != nil {
		return err
	}
	res, err := a.mutator.Delete(ctx, id)
	if err != nil {
		return err
	}
	a.report("Deleted", res)
	return nil
}

func (a *App) Sync(ctx context.Context, args []string) error {
	results, err := a.mutator.SweepPending(ctx)
	synced := 0
	for _, r := range results {
		if r.State == services.StateSynced {
			synced++
		}
	}
	a.printf("%d of %d pending documents synced\n", synced, len(results))
	return quotaHint(err)
}

func (a *App) Usage(ctx context.Context, args []string) error {
	snap, err := a.quota.Usage(ctx)
	if err != nil {
		return err
	}
	a.printf("%s\n", usageLine(snap, a.quota.Severity(snap)))
	return nil
}

// importRef copies a newly referenced media file into the media directory.
// Remote keys and cleared refs pass through.
func (a *App) importRef(ref *string) (*string, error) {
	if ref == nil || *ref == "" || !models.IsLocalMedia(*ref) {
		return ref, nil
	}
	p, err := filex.ImportMedia(a.mediaDir, *ref)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *App) report(action string, res services.MutationResult) {
	if res.LocalID == 0 {
		return
	}
	line := fmt.Sprintf("%s #%d: %s", action, res.LocalID, res.State)
	if res.Reason != services.ReasonNone {
		line += " (" + string(res.Reason) + ")"
	}
	a.printf("%s\n", line)
}

func (a *App) printBanner(ctx context.Context) {
	snap, err := a.quota.Usage(ctx)
	if err != nil {
		a.log.Debug(ctx, "usage unavailable", "error", err)
		return
	}
	if sev := a.quota.Severity(snap); sev != models.SeverityOK {
		a.printf("%s\n", usageLine(snap, sev))
	}
}

func quotaHint(err error) error {
	if errors.Is(err, common.ErrQuotaExceeded) {
		return fmt.Errorf("storage quota exceeded, the change is saved locally and will sync once space is available: %w", err)
	}
	return err
}
