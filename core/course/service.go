package course

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/QinlinChen/StuHub/core"
)

const transcriptField = "transcript"

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound = errors.New("course not found")
)

type (
	Repository interface {
		// CreateCourses inserts all courses or none of them.
		CreateCourses(ctx context.Context, courses []Course) ([]Course, error)
		// QueryCourses returns the matching courses ordered by term (latest first) and their total count.
		// A nil pagination returns every match.
		QueryCourses(ctx context.Context, filter QueryFilter, pagination *core.Pagination) ([]Course, int, error)
		GetCourse(ctx context.Context, userID, id string) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, userID, id string) error
	}

	// Observer is notified of computations and imports (e.g. for metrics).
	Observer interface {
		StatisticsComputed(stats Statistics)
		CoursesImported(classified, unclassified int)
	}

	Service interface {
		Policy() Policy
		Create(ctx context.Context, userID string, nc NewCourse) (Course, error)
		Import(ctx context.Context, userID string, term int, rows []TranscriptRow) (ImportResult, error)
		ImportTranscript(ctx context.Context, userID string, term int, r io.Reader) (ImportResult, error)
		Query(ctx context.Context, userID string, terms TermRange, page int) (Page, error)
		All(ctx context.Context, userID string, terms TermRange) ([]Course, error)
		Get(ctx context.Context, userID, id string) (Course, error)
		Update(ctx context.Context, userID, id string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, userID, id string) error
		Statistics(ctx context.Context, userID string, terms TermRange) (Statistics, error)
	}

	// ImportResult lists the stored courses and the rows left for manual classification.
	ImportResult struct {
		Imported     []Course        `json:"imported"`
		Unclassified []TranscriptRow `json:"unclassified"`
	}

	service struct {
		repo     Repository
		policy   Policy
		perPage  int
		observer Observer
	}
)

var _ Service = (*service)(nil)

type noopObserver struct{}

func (noopObserver) StatisticsComputed(Statistics) {}

func (noopObserver) CoursesImported(classified, unclassified int) {}

func NewService(repo Repository, conf *core.Config, observer Observer) (Service, error) {
	policy, err := PolicyFromConfig(conf.Policy)
	if err != nil {
		return nil, errors.Wrap(err, "loading policy")
	}
	if observer == nil {
		observer = noopObserver{}
	}
	perPage := conf.CoursesPerPage
	if perPage <= 0 {
		perPage = 20
	}
	return &service{
		repo:     repo,
		policy:   policy,
		perPage:  perPage,
		observer: observer,
	}, nil
}

func now() time.Time {
	return NowFunc().UTC().Truncate(time.Microsecond)
}

func (svc *service) Policy() Policy { return svc.policy }

func (svc *service) Create(ctx context.Context, userID string, nc NewCourse) (Course, error) {
	ts := now()
	crs := Course{
		UserID:    userID,
		Name:      nc.Name,
		Term:      nc.Term,
		Category:  nc.Category,
		Credit:    nc.Credit,
		Score:     nc.Score,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	created, err := svc.repo.CreateCourses(ctx, []Course{crs})
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	return created[0], nil
}

// Import stores the classified rows under term. Unclassified rows are not stored.
// Nothing is stored when a classified row is out of bounds; the error names every such row.
func (svc *service) Import(ctx context.Context, userID string, term int, rows []TranscriptRow) (ImportResult, error) {
	if term < MinTerm || term > MaxTerm {
		return ImportResult{}, core.NewFieldValidationError("term", "term must be between 1 and 8")
	}

	ts := now()
	res := ImportResult{Imported: []Course{}, Unclassified: []TranscriptRow{}}
	toCreate := make([]Course, 0, len(rows))
	rowsErr := &core.ValidationError{}
	for i, row := range rows {
		if !row.Classified {
			res.Unclassified = append(res.Unclassified, row)
			continue
		}
		nc := row.course(term)
		nc.Name = core.CleanString(nc.Name)
		if msgs := nc.problems(); len(msgs) > 0 {
			rowsErr.Add(transcriptField, fmt.Sprintf("row %d (%s): %s", i+1, row.Name, strings.Join(msgs, ", ")))
			continue
		}
		toCreate = append(toCreate, Course{
			UserID:    userID,
			Name:      nc.Name,
			Term:      nc.Term,
			Category:  nc.Category,
			Credit:    nc.Credit,
			Score:     nc.Score,
			CreatedAt: ts,
			UpdatedAt: ts,
		})
	}

	if len(rowsErr.Fields) > 0 {
		return ImportResult{}, rowsErr
	}

	if len(toCreate) > 0 {
		created, err := svc.repo.CreateCourses(ctx, toCreate)
		if err != nil {
			return ImportResult{}, errors.Wrap(err, "importing courses")
		}
		res.Imported = created
	}
	svc.observer.CoursesImported(len(res.Imported), len(res.Unclassified))
	return res, nil
}

func (svc *service) ImportTranscript(ctx context.Context, userID string, term int, r io.Reader) (ImportResult, error) {
	rows, err := ParseTranscript(r)
	if err != nil {
		if errors.Cause(err) == ErrMalformedTranscript {
			return ImportResult{}, core.NewFieldValidationError(transcriptField, err.Error())
		}
		return ImportResult{}, errors.Wrap(err, "parsing transcript")
	}
	return svc.Import(ctx, userID, term, rows)
}

func (svc *service) Query(ctx context.Context, userID string, terms TermRange, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	pg := core.Pagination{Page: page, PerPage: svc.perPage}
	courses, total, err := svc.repo.QueryCourses(ctx, QueryFilter{UserID: userID, Terms: terms}, &pg)
	if err != nil {
		return Page{}, errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []Course{}
	}
	return Page{
		Courses: courses,
		Page:    page,
		PerPage: svc.perPage,
		Pages:   pg.Pages(total),
		Total:   total,
	}, nil
}

func (svc *service) All(ctx context.Context, userID string, terms TermRange) ([]Course, error) {
	courses, _, err := svc.repo.QueryCourses(ctx, QueryFilter{UserID: userID, Terms: terms}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (svc *service) Get(ctx context.Context, userID, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, userID, id)
}

func (svc *service) Update(ctx context.Context, userID, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, userID, id)
	if err != nil {
		return Course{}, err
	}
	crs = uc.apply(crs)
	crs.UpdatedAt = now()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, userID, id string) error {
	return svc.repo.DeleteCourse(ctx, userID, id)
}

// Statistics computes the figures of the user's courses within terms using the configured policy.
func (svc *service) Statistics(ctx context.Context, userID string, terms TermRange) (Statistics, error) {
	courses, err := svc.All(ctx, userID, terms)
	if err != nil {
		return Statistics{}, err
	}
	stats := svc.policy.Compute(courses)
	svc.observer.StatisticsComputed(stats)
	return stats, nil
}
