package routers

import (
	"edutrack/controllers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Router carries the handlers and guards the route tables are built from.
type Router struct {
	Auth      fiber.Handler
	Admin     fiber.Handler
	AdminRole string
	DB        *gorm.DB
	Gatherer  prometheus.Gatherer
	UploadDir string

	Training     *controllers.TrainingController
	Registration *controllers.RegistrationController
	Enrollment   *controllers.EnrollmentController
	Certificate  *controllers.CertificateController
	Review       *controllers.ReviewController

	UserCertificate *controllers.UserCertificateController
}

func (r Router) Setup(app *fiber.App) {
	app.Get("/health", controllers.Health(r.DB))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))

	if r.UploadDir != "" {
		app.Static("/uploads", r.UploadDir)
	}

	r.setupTrainingRoutes(app)
	r.setupRegistrationRoutes(app)
	r.setupEnrollmentRoutes(app)
	r.setupCertificateRoutes(app)
	r.setupReviewRoutes(app)
	r.setupEmailRoutes(app)
	r.setupUserCertificateRoutes(app)
	r.setupDirectoryRoutes(app)
}
