package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/course"
	"github.com/QinlinChen/StuHub/core/user"
)

const orderingParam = "ordering"

// Ordering binds `?ordering=field,-other` ("-" for descending).
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// queryInt parses the optional integer query param name. Missing values yield 0.
func queryInt(ctx echo.Context, name string) (int, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewFieldValidationError(name, name+" must be an integer")
	}
	return i, nil
}

func formInt(ctx echo.Context, name string) (int, error) {
	val := strings.TrimSpace(ctx.FormValue(name))
	if val == "" {
		return 0, core.NewFieldValidationError(name, "this field is required")
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewFieldValidationError(name, name+" must be an integer")
	}
	return i, nil
}

func queryTime(ctx echo.Context, name string) (time.Time, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, core.NewFieldValidationError(name, name+" must be an RFC 3339 date-time")
	}
	return t, nil
}

func bindTermRange(ctx echo.Context) (course.TermRange, error) {
	var tr course.TermRange
	var err error
	if tr.From, err = queryInt(ctx, "term_from"); err != nil {
		return tr, err
	}
	tr.To, err = queryInt(ctx, "term_to")
	return tr, err
}

func bindUserFilter(ctx echo.Context) (*user.QueryFilter, error) {
	filter := &user.QueryFilter{
		Search: ctx.QueryParam("search"),
		Roles:  ctx.QueryParams()["role"],
	}
	if val := ctx.QueryParam("is_active"); val != "" {
		active, err := strconv.ParseBool(val)
		if err != nil {
			return nil, core.NewFieldValidationError("is_active", "is_active must be a boolean")
		}
		filter.IsActive = &active
	}

	var err error
	if filter.CreatedFrom, err = queryTime(ctx, "created_from"); err != nil {
		return nil, err
	}
	if filter.CreatedTo, err = queryTime(ctx, "created_to"); err != nil {
		return nil, err
	}
	filter.Clean()
	return filter, nil
}
