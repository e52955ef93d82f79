package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/filex"
	"github.com/dmitrijs2005/stockkeeper/internal/live"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/netx"
)

const exportDir = "exports"

// waitFor blocks until s holds a value accepted by done or the call timeout
// passes.
func waitFor[T any](ctx context.Context, timeout time.Duration, s *live.State[T], done func(T) bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_ = s.Watch(ctx, func(v T) {
		if done(v) {
			cancel()
		}
	})
}

// awaitFirstEmission starts sh and waits for its first upstream value. The
// replayed initial value does not count.
func awaitFirstEmission[T any](ctx context.Context, timeout time.Duration, sh *live.Shared[T]) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	seen := 0
	_ = sh.Watch(ctx, func(T) {
		seen++
		if seen > 1 {
			cancel()
		}
	})
}

func (a *App) printProducts(list []models.Product) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No products")
		return
	}
	for _, p := range list {
		a.printProduct(p)
	}
	fmt.Fprintf(a.out, "%d product(s), total %.2f\n", len(list), models.TotalOf(list))
}

func (a *App) printProduct(p models.Product) {
	fmt.Fprintf(a.out, "%s  #%d %-24s %10.2f x %-6d = %.2f\n", p.ID, p.Code, p.Name, p.Price, p.Quantity, p.Total())
}

// List loads the product list once and prints the snapshot.
func (a *App) List(ctx context.Context) error {
	a.home.LoadProducts()
	waitFor(ctx, a.config.CallTimeout, a.home.IsLoading, func(loading bool) bool { return !loading })

	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not signed in")
	}
	a.printProducts(a.home.Products.Value())
	return nil
}

// Watch prints every list the store emits until the user presses Enter.
func (a *App) Watch(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrorUnauthorized
	}
	a.home.LoadProducts()
	fmt.Fprintln(a.out, "Watching products, press Enter to stop")

	ctx, cancel := context.WithCancel(ctx)
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		_ = a.home.Products.Watch(ctx, func(list []models.Product) {
			fmt.Fprintf(a.out, "--- %s\n", time.Now().Format(time.TimeOnly))
			a.printProducts(list)
		})
	}()

	_, _ = a.reader.ReadString('\n')
	cancel()
	<-watched
	return nil
}

// Total prints the store-computed inventory value.
func (a *App) Total(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrorUnauthorized
	}
	if !a.totalPrimed {
		awaitFirstEmission(ctx, a.config.CallTimeout, a.products.TotalFlow)
		a.totalPrimed = true
	}
	fmt.Fprintf(a.out, "Total inventory value: %.2f\n", a.products.TotalFlow.Value())
	return nil
}

// Show loads id into the detail screen and prints it. It becomes the
// record that "remove" deletes.
func (a *App) Show(ctx context.Context, id string) error {
	a.detail.LoadProduct(id)
	waitFor(ctx, a.config.CallTimeout, a.detail.IsLoading, func(loading bool) bool { return !loading })

	p, ok := a.detail.Product.Value().Get()
	if !ok {
		fmt.Fprintf(a.out, "Product %s not found\n", id)
		return nil
	}
	a.printProduct(p)
	return nil
}

// Remove deletes the product last shown and waits for the outcome.
func (a *App) Remove(ctx context.Context) error {
	result := make(chan error, 1)
	a.detail.DeleteCurrentProduct(
		func() { result <- nil },
		func(err error) { result <- err },
	)

	select {
	case err := <-result:
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Deleted")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Find looks id up in the shared product list.
func (a *App) Find(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		return common.ErrorUnauthorized
	}
	if !a.productsPrimed {
		awaitFirstEmission(ctx, a.config.CallTimeout, a.products.ProductsFlow)
		a.productsPrimed = true
	}

	p, ok := a.products.ProductByID(id).Get()
	if !ok {
		fmt.Fprintf(a.out, "Product %s not found\n", id)
		return nil
	}
	a.printProduct(p)
	return nil
}

// Add prompts for a product and submits it. The outcome is not reported;
// the lists show it once the store re-emits.
func (a *App) Add(ctx context.Context) error {
	p, err := a.readProduct(models.Product{})
	if err != nil {
		return err
	}
	a.products.AddProduct(p)
	fmt.Fprintln(a.out, "Submitted")
	return nil
}

// Edit prompts for new values of id; empty answers keep the current ones.
func (a *App) Edit(ctx context.Context, id string) error {
	current, err := a.store.ProductByID(ctx, id)
	if err != nil {
		return err
	}
	p, ok := current.Get()
	if !ok {
		return fmt.Errorf("product %s: %w", id, common.ErrorNotFound)
	}

	p, err = a.readProduct(p)
	if err != nil {
		return err
	}
	a.products.UpdateProduct(p)
	fmt.Fprintln(a.out, "Submitted")
	return nil
}

// Delete submits removal of id without waiting for the outcome.
func (a *App) Delete(ctx context.Context, id string) error {
	a.products.DeleteProduct(id)
	fmt.Fprintln(a.out, "Submitted")
	return nil
}

// Export asks the server for a snapshot and prints its download URL. With
// a file name the snapshot is also saved under ./exports.
func (a *App) Export(ctx context.Context, name string) error {
	url, err := a.gateway.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintln(a.out, url)

	if name == "" {
		return nil
	}

	body, err := netx.DownloadPresigned(ctx, url)
	if err != nil {
		return fmt.Errorf("download snapshot: %w", err)
	}

	dir, err := filex.EnsureSubdDir(exportDir)
	if err != nil {
		return err
	}
	out := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(out, body, 0o600); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	fmt.Fprintf(a.out, "Snapshot saved to: %s\n", out)
	return nil
}

var errEmptyName = errors.New("name is required")

// readProduct prompts for every editable field. An empty answer keeps the
// value from base.
func (a *App) readProduct(base models.Product) (models.Product, error) {
	p := base

	code, err := a.prompt("Enter code", strconv.Itoa(base.Code))
	if err != nil {
		return p, err
	}
	if p.Code, err = strconv.Atoi(code); err != nil {
		return p, fmt.Errorf("%w: code %q", common.ErrorValidation, code)
	}

	if p.Name, err = a.prompt("Enter name", base.Name); err != nil {
		return p, err
	}
	if p.Name == "" {
		return p, fmt.Errorf("%w: %w", common.ErrorValidation, errEmptyName)
	}

	price, err := a.prompt("Enter price", strconv.FormatFloat(base.Price, 'f', -1, 64))
	if err != nil {
		return p, err
	}
	if p.Price, err = strconv.ParseFloat(price, 64); err != nil {
		return p, fmt.Errorf("%w: price %q", common.ErrorValidation, price)
	}

	qty, err := a.prompt("Enter quantity", strconv.Itoa(base.Quantity))
	if err != nil {
		return p, err
	}
	if p.Quantity, err = strconv.Atoi(qty); err != nil {
		return p, fmt.Errorf("%w: quantity %q", common.ErrorValidation, qty)
	}

	return p, p.Validate()
}

// prompt reads one answer, falling back to def on an empty line.
func (a *App) prompt(label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s [%s]", label, def)
	}
	v, err := getSimpleText(a.reader, label, a.out)
	if err != nil {
		return "", err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	return v, nil
}
