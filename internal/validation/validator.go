// Package validation checks external payloads before domain types are built from them.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dharmasatrya/flightchart/internal/flightdate"
	"github.com/dharmasatrya/flightchart/internal/models"
)

var (
	iataPattern       = regexp.MustCompile(`^[A-Z]{3}$`)
	dateWindowPattern = regexp.MustCompile(`^[MPI][1-3]D$`)
	clockPattern      = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	timeWindowPattern = regexp.MustCompile(`^([1-9]|1[0-2])H$`)
)

// Struct-level rule tags.
const (
	tagDatesOrder    = "dates_order"
	tagLegRequested  = "leg_requested"
	tagTimeWindow    = "time_window"
	tagUniqueIDs     = "unique_ids"
	tagChronological = "chronological"
	tagSeated        = "seated_travelers"
	tagInfants       = "infants_with_adults"
)

var ruleMessages = map[string]models.ValidationError{
	tagDatesOrder:    models.ErrDatesOutOfOrder,
	tagLegRequested:  models.ErrNoLegRequested,
	tagTimeWindow:    models.ErrInconsistentTimeWindow,
	tagUniqueIDs:     models.ErrDuplicateID,
	tagChronological: models.ErrNotChronological,
	tagSeated:        models.ErrSeatedTravelers,
	tagInfants:       models.ErrInfantsWithoutAdults,
}

// FieldErrors is returned when a payload fails validation.
type FieldErrors []models.FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator satisfies echo.Validator.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("flightdate", func(fl validator.FieldLevel) bool {
		return flightdate.Valid(models.FlightDate(fl.Field().String()))
	}))
	must(v.RegisterValidation("iata", matches(iataPattern)))
	must(v.RegisterValidation("currency", matches(iataPattern)))
	must(v.RegisterValidation("datewindow", matches(dateWindowPattern)))
	must(v.RegisterValidation("clocktime", matches(clockPattern)))
	must(v.RegisterValidation("timewindow", matches(timeWindowPattern)))

	v.RegisterStructValidation(tripIntentRules, models.TripIntent{})
	v.RegisterStructValidation(listingRules, models.ListingInfo{})
	v.RegisterStructValidation(preferencesRules, models.UserPreferences{})
	v.RegisterStructValidation(timeWindowRules, models.TimeWindow{})
	v.RegisterStructValidation(searchBodyRules, models.FlightSearchBody{})

	return &Validator{validate: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Validate checks i and returns FieldErrors describing every failed rule.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name, e.g. "ChartRequest.listingInfo.outboundDate"
// becomes "listingInfo.outboundDate".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	if msg, ok := ruleMessages[fe.Tag()]; ok {
		return msg.Error()
	}

	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "eq":
		return "must equal " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "flightdate":
		return "must be a date in YYYY-MM-DD format"
	case "iata":
		return "must be a three-letter IATA code"
	case "currency":
		return "must be an ISO 4217 currency code"
	case "datewindow":
		return "must match [MPI][1-3]D"
	case "clocktime":
		return "must be a time in HH:MM:SS format"
	case "timewindow":
		return "must be between 1H and 12H"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func datesInOrder(outbound, ret models.FlightDate) bool {
	// Malformed dates are reported by the field tags.
	if !flightdate.Valid(outbound) || !flightdate.Valid(ret) {
		return true
	}
	return outbound < ret
}

func tripIntentRules(sl validator.StructLevel) {
	intent := sl.Current().Interface().(models.TripIntent)
	if !datesInOrder(intent.OutboundDate, intent.ReturnDate) {
		sl.ReportError(intent.ReturnDate, "returnDate", "ReturnDate", tagDatesOrder, "")
	}
}

func listingRules(sl validator.StructLevel) {
	listing := sl.Current().Interface().(models.ListingInfo)
	if !datesInOrder(listing.OutboundDate, listing.ReturnDate) {
		sl.ReportError(listing.ReturnDate, "returnDate", "ReturnDate", tagDatesOrder, "")
	}
}

func preferencesRules(sl validator.StructLevel) {
	prefs := sl.Current().Interface().(models.UserPreferences)
	if !prefs.SearchOutboundFlight && !prefs.SearchReturnFlight {
		sl.ReportError(prefs.SearchOutboundFlight, "searchOutboundFlight", "SearchOutboundFlight", tagLegRequested, "")
	}
}

func timeWindowRules(sl validator.StructLevel) {
	w := sl.Current().Interface().(models.TimeWindow)
	if depMin, depMax := w.Departure(); depMin > depMax {
		sl.ReportError(w.LatestDepartureTime, "latestDepartureTime", "LatestDepartureTime", tagTimeWindow, "")
	}
	if arrMin, arrMax := w.Arrival(); arrMin > arrMax {
		sl.ReportError(w.LatestArrivalTime, "latestArrivalTime", "LatestArrivalTime", tagTimeWindow, "")
	}
}

func searchBodyRules(sl validator.StructLevel) {
	body := sl.Current().Interface().(models.FlightSearchBody)

	odIDs := make([]string, len(body.OriginDestinations))
	for i, od := range body.OriginDestinations {
		odIDs[i] = od.ID
	}
	if !unique(odIDs) {
		sl.ReportError(body.OriginDestinations, "originDestinations", "OriginDestinations", tagUniqueIDs, "")
	}
	if !chronological(body.OriginDestinations) {
		sl.ReportError(body.OriginDestinations, "originDestinations", "OriginDestinations", tagChronological, "")
	}

	travelerIDs := make([]string, len(body.Travelers))
	seated, adults, infants := 0, 0, 0
	for i, tr := range body.Travelers {
		travelerIDs[i] = tr.ID
		switch tr.TravelerType {
		case models.TravelerHeldInfant:
			infants++
		case models.TravelerSeatedInfant:
			infants++
			seated++
		case models.TravelerAdult:
			adults++
			seated++
		default:
			seated++
		}
	}
	if !unique(travelerIDs) {
		sl.ReportError(body.Travelers, "travelers", "Travelers", tagUniqueIDs, "")
	}
	if len(body.Travelers) > 0 && (seated < 1 || seated > 9) {
		sl.ReportError(body.Travelers, "travelers", "Travelers", tagSeated, "")
	}
	if adults < infants {
		sl.ReportError(body.Travelers, "travelers", "Travelers", tagInfants, "")
	}
}

func unique(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

// chronological requires each leg to start strictly after the previous one.
func chronological(ods []models.OriginDestination) bool {
	prev := ""
	for _, od := range ods {
		anchor := od.Anchor()
		if anchor == nil {
			continue
		}
		clock := anchor.Time
		if clock == "" {
			clock = "00:00:00"
		}
		cur := string(anchor.Date) + " " + clock
		if prev != "" && cur <= prev {
			return false
		}
		prev = cur
	}
	return true
}
