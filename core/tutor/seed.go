package tutor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/scola/core"
)

var demoTutors = []Tutor{
	{
		Name:          "Dr. Sarah Wilson",
		Email:         "sarah.wilson@tutor.com",
		Qualification: "PhD Mathematics",
		Subjects:      "Mathematics, Physics",
		Rate:          75,
		Availability:  "Mon-Fri 4pm-8pm",
		Bio:           "Experienced mathematics tutor with 10+ years of teaching experience.",
		Rating:        4.8,
	},
	{
		Name:          "Prof. Michael Chen",
		Email:         "michael.chen@tutor.com",
		Qualification: "MSc Chemistry",
		Subjects:      "Chemistry, Science",
		Rate:          60,
		Availability:  "Weekends 10am-6pm",
		Bio:           "Chemistry professor specializing in organic chemistry.",
		Rating:        4.9,
	},
	{
		Name:          "Ms. Emily Davis",
		Email:         "emily.davis@tutor.com",
		Qualification: "BA English Literature",
		Subjects:      "English, Literature",
		Rate:          50,
		Availability:  "Tue-Thu 3pm-7pm",
		Bio:           "Passionate about helping students improve their writing skills.",
		Rating:        4.7,
	},
}

// SeedDemoData creates the demo tutor profiles if no tutor exists yet. It returns the number of tutors created.
func SeedDemoData(ctx context.Context, repo Repository) (int, error) {
	existing, err := repo.QueryTutors(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying tutors")
	}
	if len(existing) > 0 {
		return 0, nil
	}

	now := core.Now()
	for i, t := range demoTutors {
		t.CreatedAt = now
		t.UpdatedAt = now
		if _, err = repo.SaveTutor(ctx, t); err != nil {
			return i, errors.Wrapf(err, "creating %s", t.Email)
		}
	}
	return len(demoTutors), nil
}
