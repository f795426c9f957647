package web

import (
	"embed"
	"io/fs"
	"math"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"laptopcatalog/internal/middleware"
	"laptopcatalog/internal/models"
	"laptopcatalog/pkg/client"
)

//go:embed views
var viewsFS embed.FS

var vnd = message.NewPrinter(language.Vietnamese)

// FormatPrice renders an hourly price in Vietnamese dong, e.g. "15.000 ₫".
func FormatPrice(v float64) string {
	return vnd.Sprintf("%d ₫", int64(math.Round(v)))
}

// NewEngine loads the embedded page templates.
func NewEngine() *html.Engine {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("price", FormatPrice)
	return engine
}

// NewApp builds the frontend application on top of an API client.
func NewApp(catalog Catalog, tokens *SubmissionTokens, logger *zap.Logger) *fiber.App {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               "laptopd-web",
		DisableStartupMessage: true,
		Views:                 NewEngine(),
	})
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.Recover(logger))

	NewHandler(catalog, tokens, logger).RegisterRoutes(app)
	return app
}

// InvalidateOnEvent returns a catalog event handler that drops whatever the
// client cache knows about the changed laptop.
func InvalidateOnEvent(c *client.Client, logger *zap.Logger) func(models.LaptopEvent) error {
	return func(event models.LaptopEvent) error {
		logger.Debug("invalidating cache after catalog event",
			zap.String("type", string(event.Type)),
			zap.String("laptop_id", event.LaptopID))
		c.Invalidate(event.LaptopID)
		return nil
	}
}
