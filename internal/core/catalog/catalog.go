package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/utils"
)

// Product is one priced row of the catalog workbook.
type Product struct {
	Code           string          `json:"codigo"`
	Description    string          `json:"descripcion"`
	Category       string          `json:"categoria"`
	StorePrice     decimal.Decimal `json:"precioTienda"`
	InstallerPrice decimal.Decimal `json:"precioInstalador"`
	GeneralPrice   decimal.Decimal `json:"precioGeneral"`
}

type Stats struct {
	Products   int       `json:"totalProductos"`
	Categories int       `json:"categorias"`
	LastLoaded time.Time `json:"ultimaActualizacion"`
	Path       string    `json:"archivoExcel"`
}

// Catalog serves products read from an .xlsx sheet. Every read checks the
// file's modification time and reloads when it changed.
type Catalog struct {
	path  string
	sheet string

	mu       sync.RWMutex
	products []Product
	byCode   map[string]int
	modTime  time.Time
	loadedAt time.Time
	// mtime of a workbook that failed to load; not retried until it changes
	failedMod time.Time
}

func New(path, sheet string) *Catalog {
	return &Catalog{path: path, sheet: sheet, byCode: map[string]int{}}
}

// Load reads the workbook unconditionally.
func (c *Catalog) Load() error {
	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("stat catalog: %w", err)
	}

	products, err := readSheet(c.path, c.sheet)
	if err != nil {
		c.mu.Lock()
		c.failedMod = info.ModTime()
		c.mu.Unlock()
		return err
	}

	byCode := make(map[string]int, len(products))
	for i, p := range products {
		byCode[codeKey(p.Code)] = i
	}

	c.mu.Lock()
	c.products = products
	c.byCode = byCode
	c.modTime = info.ModTime()
	c.loadedAt = time.Now()
	c.failedMod = time.Time{}
	c.mu.Unlock()

	log.Info().Int("products", len(products)).Str("file", c.path).Msg("✅ Catalog loaded")
	return nil
}

// checkForUpdates reloads the workbook when its mtime moved forward.
func (c *Catalog) checkForUpdates() {
	info, err := os.Stat(c.path)
	if err != nil {
		return
	}

	c.mu.RLock()
	current, failed := c.modTime, c.failedMod
	c.mu.RUnlock()

	if !current.IsZero() && !info.ModTime().After(current) {
		return
	}
	if !failed.IsZero() && info.ModTime().Equal(failed) {
		return
	}

	log.Info().Str("file", c.path).Msg("📄 Catalog file changed, reloading products...")
	if err := c.Load(); err != nil {
		log.Error().Err(err).Msg("❌ Failed to reload catalog")
	}
}

// ByCode looks a product up by code, case-insensitively.
func (c *Catalog) ByCode(code string) (Product, bool) {
	c.checkForUpdates()

	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byCode[codeKey(code)]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Search matches term against description and category, ignoring case and accents.
func (c *Catalog) Search(term string) []Product {
	c.checkForUpdates()

	needle := utils.Fold(term)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Product
	for _, p := range c.products {
		if strings.Contains(utils.Fold(p.Description), needle) || strings.Contains(utils.Fold(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns distinct non-empty categories in sheet order.
func (c *Catalog) Categories() []string {
	c.checkForUpdates()

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.categoriesLocked()
}

func (c *Catalog) categoriesLocked() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		cat := strings.TrimSpace(p.Category)
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

func (c *Catalog) All() []Product {
	c.checkForUpdates()

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Stats() Stats {
	c.checkForUpdates()

	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Products:   len(c.products),
		Categories: len(c.categoriesLocked()),
		LastLoaded: c.loadedAt,
		Path:       c.path,
	}
}

func codeKey(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// column headers recognised in the sheet, folded
var columns = map[string]string{
	"codigo":      "code",
	"descripcion": "description",
	"categoria":   "category",
	"usdm":        "store",
	"usdi":        "installer",
	"usdg":        "general",
}

var errNoHeader = errors.New("catalog sheet has no Codigo/Descripcion header")

func readSheet(path, sheet string) ([]Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errNoHeader
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		if field, ok := columns[utils.Fold(h)]; ok {
			index[field] = i
		}
	}
	if _, ok := index["code"]; !ok {
		return nil, errNoHeader
	}
	if _, ok := index["description"]; !ok {
		return nil, errNoHeader
	}

	cell := func(row []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	products := make([]Product, 0, len(rows)-1)
	for _, row := range rows[1:] {
		p := Product{
			Code:           cell(row, "code"),
			Description:    cell(row, "description"),
			Category:       cell(row, "category"),
			StorePrice:     parsePrice(cell(row, "store")),
			InstallerPrice: parsePrice(cell(row, "installer")),
			GeneralPrice:   parsePrice(cell(row, "general")),
		}
		if p.Code == "" || p.Description == "" {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// parsePrice reads a price cell; anything unparsable counts as unavailable.
func parsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
