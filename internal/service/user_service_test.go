package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/pkg/grader"
)

type fakeUsers struct {
	teacherCalls  int
	studentCalls  int
	teacher       grader.TeacherCreate
	student       grader.StudentCreate
	roster        []models.Student
	enrollCalls   int
	unenrollCalls int
	courseID      int
	studentID     int
}

func (f *fakeUsers) RegisterTeacher(_ context.Context, req grader.TeacherCreate) (models.User, error) {
	f.teacherCalls++
	f.teacher = req
	return models.User{ID: 1, Name: req.Name, Email: req.Email}, nil
}

func (f *fakeUsers) RegisterStudent(_ context.Context, req grader.StudentCreate) (models.User, error) {
	f.studentCalls++
	f.student = req
	return models.User{ID: 2, Name: req.Name, Email: req.Email}, nil
}

func (f *fakeUsers) ListStudents(_ context.Context, _ string) ([]models.Student, error) {
	return f.roster, nil
}

func (f *fakeUsers) Enroll(_ context.Context, _ string, courseID, studentID int) error {
	f.enrollCalls++
	f.courseID = courseID
	f.studentID = studentID
	return nil
}

func (f *fakeUsers) Unenroll(_ context.Context, _ string, courseID, studentID int) error {
	f.unenrollCalls++
	f.courseID = courseID
	f.studentID = studentID
	return nil
}

func TestRegisterDispatchesOnRole(t *testing.T) {
	fake := &fakeUsers{}
	svc := NewUserService(fake, testValidator(), testLogger())

	user, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@school.edu",
		Password: "hunter2hunter2",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	require.Equal(t, 1, fake.teacherCalls)
	require.Zero(t, fake.studentCalls)
	require.Equal(t, models.RoleTeacher, user.Role)

	user, err = svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Sam",
		Email:    "sam@school.edu",
		Password: "hunter2hunter2",
		Role:     models.RoleStudent,
		MNumber:  "M00012345",
	})
	require.NoError(t, err)
	require.Equal(t, 1, fake.studentCalls)
	require.Equal(t, "M00012345", fake.student.MNumber)
	require.Equal(t, models.RoleStudent, user.Role)
}

func TestRegisterRequiresMNumberForStudents(t *testing.T) {
	fake := &fakeUsers{}
	svc := NewUserService(fake, testValidator(), testLogger())

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Sam",
		Email:    "sam@school.edu",
		Password: "hunter2hunter2",
		Role:     models.RoleStudent,
	})
	require.Error(t, err)
	require.Zero(t, fake.studentCalls)
}

func TestRegisterSanitizesDisplayName(t *testing.T) {
	fake := &fakeUsers{}
	svc := NewUserService(fake, testValidator(), testLogger())

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     `Jane <script>alert(1)</script>`,
		Email:    "jane@school.edu",
		Password: "hunter2hunter2",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	require.NotContains(t, fake.teacher.Name, "<script>")
}

func TestEnrollmentForwardsIdentifiers(t *testing.T) {
	fake := &fakeUsers{}
	svc := NewUserService(fake, testValidator(), testLogger())

	require.NoError(t, svc.Enroll(context.Background(), "tok", 3, 9))
	require.Equal(t, 1, fake.enrollCalls)
	require.Equal(t, 3, fake.courseID)
	require.Equal(t, 9, fake.studentID)

	require.NoError(t, svc.Unenroll(context.Background(), "tok", 4, 10))
	require.Equal(t, 1, fake.unenrollCalls)
	require.Equal(t, 4, fake.courseID)
	require.Equal(t, 10, fake.studentID)
}
