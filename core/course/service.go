package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error
	}

	EnrollmentRepository interface {
		// UpsertEnrollment inserts or returns the existing row for
		// (student_id, course_id).
		UpsertEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		QueryAllEnrollments(ctx context.Context) ([]Enrollment, error)
		QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]Enrollment, error)
		QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
		DeleteEnrollment(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		enrolls EnrollmentRepository
	}
)

func NewService(repo Repository, enrolls EnrollmentRepository) *Service {
	return &Service{repo: repo, enrolls: enrolls}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	c := Course{
		Name:        nc.Name,
		Description: nc.Description,
		Schedule:    nc.Schedule,
		TeacherID:   nc.TeacherID,
		CreatedAt:   time.Now().UTC(),
	}
	c, err := svc.repo.CreateCourse(ctx, c)
	return c, errors.Wrap(err, "creating course")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) QueryByTeacher(ctx context.Context, teacherID string) ([]Course, error) {
	return svc.repo.QueryCoursesByTeacher(ctx, teacherID)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	orig, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err = uc.Validate(orig); err != nil {
		return Course{}, err
	}
	orig.Name = uc.Name
	orig.Description = uc.Description
	orig.Schedule = uc.Schedule
	orig.TeacherID = uc.TeacherID
	c, err := svc.repo.UpdateCourse(ctx, orig)
	return c, errors.Wrap(err, "updating course")
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// Enroll registers a student on a course; enrolling an already-enrolled
// student is a no-op returning the existing row.
func (svc *Service) Enroll(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	e := Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	e, err := svc.enrolls.UpsertEnrollment(ctx, e)
	return e, errors.Wrap(err, "enrolling student")
}

func (svc *Service) Unenroll(ctx context.Context, enrollmentID string) error {
	return svc.enrolls.DeleteEnrollment(ctx, enrollmentID)
}

func (svc *Service) Enrollments(ctx context.Context) ([]Enrollment, error) {
	return svc.enrolls.QueryAllEnrollments(ctx)
}

// StudentIDs lists the students enrolled on a course (attendance sheet,
// grading dropdowns).
func (svc *Service) StudentIDs(ctx context.Context, courseID string) ([]string, error) {
	es, err := svc.enrolls.QueryEnrollmentsByCourse(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments by course")
	}
	ids := make([]string, 0, len(es))
	for _, e := range es {
		ids = append(ids, e.StudentID)
	}
	return ids, nil
}

// CourseIDs lists the courses a student is enrolled on.
func (svc *Service) CourseIDs(ctx context.Context, studentID string) ([]string, error) {
	es, err := svc.enrolls.QueryEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments by student")
	}
	ids := make([]string, 0, len(es))
	for _, e := range es {
		ids = append(ids, e.CourseID)
	}
	return ids, nil
}
