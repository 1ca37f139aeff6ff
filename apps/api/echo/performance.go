package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/performance"
	"github.com/trezcool/scola/core/user"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePNG  = "image/png"
)

var errNoFile = core.NewFieldError("file", "Please select a file to upload")

type performanceApi struct {
	auth *authenticator
	svc  *performance.Service
}

func registerPerformanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *performance.Service) {
	api := performanceApi{auth: auth, svc: svc}

	pg := g.Group("/performance", jwt)
	pg.GET("/me", api.mySummary, auth.roleMiddleware(user.RoleStudent))

	staff := pg.Group("", auth.roleMiddleware(user.RoleTeacher, user.RoleAdmin))
	staff.POST("/upload", api.upload)
	staff.GET("/records", api.queryRecords)
	staff.GET("/grades", api.queryGrades)
	staff.GET("/stats", api.stats)
	staff.GET("/stats/export", api.exportStats)
	staff.GET("/topics", api.queryTopics)
	staff.GET("/struggling", api.queryStruggling)
	staff.GET("/excelling", api.queryExcelling)
	staff.GET("/charts/subjects", api.subjectChart)
	staff.GET("/charts/topics", api.topicChart)
}

func (api *performanceApi) upload(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}

	up := performance.Upload{Grade: core.CleanString(ctx.FormValue("grade"))}
	fh, err := ctx.FormFile("file")
	if err != nil {
		if up.Grade == "" {
			return core.NewFieldError("grade", "Please select a grade for this upload first")
		}
		return errNoFile
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()
	up.Filename = fh.Filename
	up.File = f

	res, err := api.svc.Import(ctx.Request().Context(), usr, up)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *performanceApi) queryRecords(ctx echo.Context) error {
	records, err := api.svc.Records(ctx.Request().Context(), gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *performanceApi) queryGrades(ctx echo.Context) error {
	grades, err := api.svc.Grades(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *performanceApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context(), gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "calculating stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *performanceApi) exportStats(ctx echo.Context) error {
	var buf bytes.Buffer
	if err := api.svc.ExportStats(ctx.Request().Context(), gradeFilter(ctx), &buf); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+performance.ExportFilename+`"`)
	return ctx.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}

func (api *performanceApi) queryTopics(ctx echo.Context) error {
	topics, err := api.svc.Topics(ctx.Request().Context(), gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "querying topics")
	}
	return ctx.JSON(http.StatusOK, topics)
}

func (api *performanceApi) queryStruggling(ctx echo.Context) error {
	students, err := api.svc.StrugglingStudents(ctx.Request().Context(), gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "querying struggling students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *performanceApi) queryExcelling(ctx echo.Context) error {
	students, err := api.svc.ExcellingStudents(ctx.Request().Context(), gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "querying excelling students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *performanceApi) subjectChart(ctx echo.Context) error {
	points, err := api.svc.SubjectChart(ctx.Request().Context(), gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "building subject chart")
	}
	if !wantsPNG(ctx) {
		return ctx.JSON(http.StatusOK, points)
	}

	averages := make([]performance.ChartPoint, 0, len(points))
	for _, p := range points {
		averages = append(averages, performance.ChartPoint{Name: p.Name, Value: p.Average})
	}
	return renderChart(ctx, "Average Score by Subject", averages)
}

func (api *performanceApi) topicChart(ctx echo.Context) error {
	points, err := api.svc.TopicChart(ctx.Request().Context(), gradeFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "building topic chart")
	}
	if !wantsPNG(ctx) {
		return ctx.JSON(http.StatusOK, points)
	}
	return renderChart(ctx, "Average Score by Topic", points)
}

func (api *performanceApi) mySummary(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return err
	}
	sum, err := api.svc.StudentSummary(ctx.Request().Context(), usr, 5)
	if err != nil {
		return errors.Wrap(err, "summarizing performance")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func renderChart(ctx echo.Context, title string, points []performance.ChartPoint) error {
	var buf bytes.Buffer
	if err := performance.RenderBarChart(&buf, title, points); err != nil {
		return err
	}
	return ctx.Blob(http.StatusOK, mimePNG, buf.Bytes())
}
