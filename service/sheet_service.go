package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"visual-product-builder/models"
	"visual-product-builder/repository"
	"visual-product-builder/utils"
)

// SheetService renders fulfillment sheets for orders: one page per order
// listing each customized line item with its configuration summary, element
// breakdown and snapshot image, for the packing station
type SheetService struct {
	orders repository.OrderRepositoryInterface
}

// NewSheetService creates a new SheetService
func NewSheetService(orders repository.OrderRepositoryInterface) *SheetService {
	return &SheetService{orders: orders}
}

// detectChromePath detects the path to the Chrome/Chromium executable.
// Checks CHROME_PATH env var first, then common installation paths.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

type sheetItem struct {
	Summary       string
	Elements      []models.ValidatedElement
	ElementsPrice string
	LinePrice     string
	ImageBase64   string
}

type sheetData struct {
	OrderID   int64
	CreatedAt string
	Total     string
	Items     []sheetItem
}

// RenderSheetHTML renders the fulfillment sheet HTML for an order
func (s *SheetService) RenderSheetHTML(ctx context.Context, orderID int64) (string, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", fmt.Errorf("order %d does not exist", orderID)
	}

	items, err := s.orders.GetItems(ctx, orderID)
	if err != nil {
		return "", err
	}

	data := sheetData{
		OrderID:   order.ID,
		CreatedAt: order.CreatedAt,
		Total:     utils.FormatPrice(order.Total),
	}

	for _, item := range items {
		if !itemHasCustomization(&item) {
			continue
		}

		si := sheetItem{
			Summary:       item.Summary,
			Elements:      item.Elements,
			ElementsPrice: utils.FormatPrice(item.ElementsPrice),
			LinePrice:     utils.FormatPrice(item.LinePrice),
		}

		// Embed the saved snapshot, if any, as base64 so the sheet is
		// self-contained for printing
		if item.ImageStatus == models.ImageStatusSaved && item.ImageID != nil {
			att, err := s.orders.GetAttachment(ctx, *item.ImageID)
			if err == nil && att != nil {
				if raw, err := os.ReadFile(att.FilePath); err == nil {
					si.ImageBase64 = base64.StdEncoding.EncodeToString(raw)
				} else {
					log.Printf("⚠️  Sheet: could not read snapshot %s: %v", att.FilePath, err)
				}
			}
		}

		data.Items = append(data.Items, si)
	}

	templatePath := filepath.Join("templates", "sheet.html")
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}

func itemHasCustomization(item *models.OrderItem) bool {
	return len(item.Elements) > 0
}

// GeneratePDF renders the fulfillment sheet to PDF using chromedp.
// The HTML is passed inline as a data URL; no roundtrip through the server.
func (s *SheetService) GeneratePDF(ctx context.Context, orderID int64) ([]byte, error) {
	html, err := s.RenderSheetHTML(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdfBuf []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4
				WithPaperHeight(11.7).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	log.Printf("📄 Fulfillment sheet PDF generated for order %d (%d bytes)", orderID, len(pdfBuf))
	return pdfBuf, nil
}
