package invoice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/pawnshop/internal/errs"
	"github.com/and161185/pawnshop/internal/model"
	"github.com/and161185/pawnshop/internal/notify"
)

// Opener displays a rendered document for printing.
type Opener interface {
	Open(ctx context.Context, name, html string) error
}

// OrderSource fetches order print payloads.
type OrderSource interface {
	Print(ctx context.Context, id int) (model.OrderPrint, error)
}

// PawnSource fetches pawn print payloads.
type PawnSource interface {
	Print(ctx context.Context, id int) (model.PawnPrint, error)
}

// Printer runs fetch, transform, render and open for one record.
type Printer struct {
	orders OrderSource
	pawns  PawnSource
	r      *Renderer
	open   Opener
	notify notify.Func
	log    *zap.Logger
	now    func() time.Time
}

// NewPrinter wires the print flow. Either source may be nil if unused.
func NewPrinter(orders OrderSource, pawns PawnSource, r *Renderer, o Opener, n notify.Func, log *zap.Logger) *Printer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Printer{orders: orders, pawns: pawns, r: r, open: o, notify: n, log: log, now: time.Now}
}

// PrintOrder prints the invoice of order id.
func (p *Printer) PrintOrder(ctx context.Context, id int) error {
	if p.orders == nil {
		return fmt.Errorf("print order: no order source")
	}
	data, err := p.orders.Print(ctx, id)
	if err != nil {
		return p.fetchFailed(id, err)
	}
	return p.emit(ctx, Transform(data, p.now()))
}

// PrintPawn prints the ticket of pawn id.
func (p *Printer) PrintPawn(ctx context.Context, id int) error {
	if p.pawns == nil {
		return fmt.Errorf("print pawn: no pawn source")
	}
	data, err := p.pawns.Print(ctx, id)
	if err != nil {
		return p.fetchFailed(id, err)
	}
	return p.emit(ctx, TransformPawn(data, p.now()))
}

func (p *Printer) fetchFailed(id int, err error) error {
	p.log.Warn("print fetch failed", zap.Int("id", id), zap.Error(err))
	if errors.Is(err, errs.ErrNotFound) {
		p.notify.Errorf(notify.PrintRecordNotFound, strconv.Itoa(id))
	} else {
		p.notify.Emit(notify.Error, notify.FromError(err, notify.PrintError))
	}
	return err
}

// emit renders and opens inv. The rendered document is not kept on failure.
func (p *Printer) emit(ctx context.Context, inv Invoice) error {
	html, err := p.r.Render(inv)
	if err != nil {
		p.log.Error("render invoice", zap.Error(err))
		p.notify.Errorf(notify.PrintPrepareError)
		return err
	}
	name := fmt.Sprintf("%s-%d", inv.Kind, inv.ID)
	if err := p.open.Open(ctx, name, html); err != nil {
		p.log.Warn("open print document", zap.String("name", name), zap.Error(err))
		p.notify.Errorf(notify.PrintBlocked)
		return fmt.Errorf("%w: %v", errs.ErrPopupBlocked, err)
	}
	p.notify.Successf(notify.PrintOpened)
	return nil
}

// BrowserOpener writes the document under Dir and hands it to the system browser.
type BrowserOpener struct {
	Dir string
	// Command overrides the platform launcher, e.g. []string{"firefox"}.
	Command []string
}

var _ Opener = (*BrowserOpener)(nil)

func (b *BrowserOpener) Open(ctx context.Context, name, html string) error {
	dir := b.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	path := filepath.Join(dir, name+".html")
	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		return err
	}
	argv := b.Command
	if len(argv) == 0 {
		argv = launcher()
	}
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	if err := cmd.Start(); err != nil {
		_ = os.Remove(path)
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func launcher() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	}
	return []string{"xdg-open"}
}
