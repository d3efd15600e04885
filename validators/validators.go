// Package validators holds the request validators. Each one parses and checks
// its input, stores the result in the request locals and hands over to the
// controller.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"edutrack/errs"
	"edutrack/middleware"
	"edutrack/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Locals keys shared with the controllers.
const (
	KeyTraining         = "validatedTraining"
	KeyTrainingFilter   = "validatedTrainingFilter"
	KeyRegistration     = "validatedRegistration"
	KeyStatuses         = "validatedStatuses"
	KeyRegistrationSrch = "validatedRegistrationSearch"
	KeyStatus           = "validatedStatus"
	KeyPaymentProof     = "validatedPaymentProof"
	KeyAttendance       = "validatedAttendance"
	KeyBulkAttendance   = "validatedBulkAttendance"
	KeyParticipantQuery = "validatedParticipantQuery"
	KeyHistoryStatus    = "validatedHistoryStatus"
	KeyCertificate      = "validatedCertificate"
	KeyCertificateFile  = "validatedCertificateFile"
	KeyCertificateQuery = "validatedCertificateQuery"
	KeyReview           = "validatedReview"
	KeyPage             = "validatedPage"
	KeyEmailPreview     = "validatedEmailPreview"
	KeyEmailSend        = "validatedEmailSend"
	KeyUpload           = "validatedUpload"
	KeyUserCertificate  = "validatedUserCertificate"
	KeyUserCertQuery    = "validatedUserCertificateQuery"
	KeyDirectoryQuery   = "validatedDirectoryQuery"
)

const dateLayout = "2006-01-02"

// dateLocation is the zone calendar dates in requests are read in.
var dateLocation = time.UTC

// SetLocation sets the zone used to interpret calendar dates.
func SetLocation(loc *time.Location) {
	if loc != nil {
		dateLocation = loc
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Page is the limit/offset pair accepted by list endpoints.
type Page struct {
	Limit  int `query:"limit" validate:"gte=0,lte=500"`
	Offset int `query:"offset" validate:"gte=0"`
}

// parseBody decodes the JSON body into reqData and validates it. A non-nil
// handler error means a response has already been written.
func parseBody(c *fiber.Ctx, reqData interface{}) (bool, error) {
	if err := c.BodyParser(reqData); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	return check(c, reqData)
}

func parseQuery(c *fiber.Ctx, reqData interface{}) (bool, error) {
	if err := c.QueryParser(reqData); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}
	return check(c, reqData)
}

func check(c *fiber.Ctx, reqData interface{}) (bool, error) {
	if err := validate.Struct(reqData); err != nil {
		return false, middleware.ValidationErrorResponse(c, fieldErrors(err))
	}
	return true, nil
}

func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["request"] = err.Error()
		return out
	}
	for _, fe := range ve {
		name := fe.Namespace()
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		out[name] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", field)
	case "min", "gte":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", field, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long!", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s!", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]!", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL!", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)!", field)
	default:
		return fmt.Sprintf("%s is invalid!", field)
	}
}

// PathID validates a positive integer path parameter and stores it under the
// parameter's name.
func PathID(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, fmt.Sprintf("%s is required!", param), nil)
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, fmt.Sprintf("Invalid %s!", param), nil)
		}
		c.Locals(param, uint(id))
		return c.Next()
	}
}

// Pagination validates limit and offset query parameters.
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(Page)
		if ok, err := parseQuery(c, reqData); !ok {
			return err
		}
		c.Locals(KeyPage, reqData)
		return c.Next()
	}
}

// Upload checks the multipart "file" field against the size and type limits.
func Upload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "file is required!"})
		}
		if err := utils.CheckUpload(file); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": errs.Message(err)})
		}
		c.Locals(KeyUpload, file)
		return c.Next()
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(dateLayout, raw, dateLocation); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// startOfDay and endOfDay turn optional date filters into inclusive bounds.
func startOfDay(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil
	}
	from, _ := utils.DayRange(t, dateLocation)
	return &from
}

func endOfDay(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil
	}
	_, to := utils.DayRange(t, dateLocation)
	return &to
}
