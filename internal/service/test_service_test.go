package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livetest-app/livetest/internal/dto"
	"github.com/livetest-app/livetest/internal/models"
	"github.com/livetest-app/livetest/pkg/grader"
)

type fakeTests struct {
	createCalls int
	updateCalls int
	created     grader.TestCreate
	updated     grader.TestUpdate
	test        models.Test
	image       []byte
}

func (f *fakeTests) CreateTest(_ context.Context, _ string, req grader.TestCreate) (models.Test, error) {
	f.createCalls++
	f.created = req
	return f.test, nil
}

func (f *fakeTests) GetTest(_ context.Context, _, _ string) (models.Test, error) {
	return f.test, nil
}

func (f *fakeTests) UpdateTest(_ context.Context, _, _ string, req grader.TestUpdate) (models.Test, error) {
	f.updateCalls++
	f.updated = req
	return f.test, nil
}

func (f *fakeTests) DeleteTest(_ context.Context, _, _ string) error { return nil }

func (f *fakeTests) TemplateImage(_ context.Context, _, _, _ string) ([]byte, error) {
	return f.image, nil
}

func validTestCreate() dto.TestCreateRequest {
	start := time.Date(2026, time.September, 14, 9, 0, 0, 0, time.UTC)
	return dto.TestCreateRequest{
		Name:         "Midterm 1",
		StartTime:    start,
		EndTime:      start.Add(90 * time.Minute),
		NumQuestions: 3,
		NumChoices:   4,
		CourseID:     7,
		Answers:      map[string]int{"1": 0, "2": 3, "3": 1},
	}
}

func TestTestCreateForwardsValidPayload(t *testing.T) {
	fake := &fakeTests{test: models.Test{ID: testUUID, CourseID: 7}}
	svc := NewTestService(fake, testValidator(), testLogger())

	created, err := svc.Create(context.Background(), "tok", validTestCreate())
	require.NoError(t, err)
	require.Equal(t, testUUID, created.ID)
	require.Equal(t, 1, fake.createCalls)
	require.Equal(t, map[string]int{"1": 0, "2": 3, "3": 1}, fake.created.Answers)
}

func TestTestCreateRejectsEndBeforeStart(t *testing.T) {
	fake := &fakeTests{}
	svc := NewTestService(fake, testValidator(), testLogger())

	payload := validTestCreate()
	payload.EndTime = payload.StartTime.Add(-time.Minute)

	_, err := svc.Create(context.Background(), "tok", payload)
	require.ErrorIs(t, err, ErrScheduleInvalid)
	require.Zero(t, fake.createCalls)
}

func TestTestCreateRejectsIncompleteAnswerKey(t *testing.T) {
	fake := &fakeTests{}
	svc := NewTestService(fake, testValidator(), testLogger())

	payload := validTestCreate()
	delete(payload.Answers, "2")

	_, err := svc.Create(context.Background(), "tok", payload)
	require.ErrorIs(t, err, ErrAnswerKeyIncomplete)
	require.Zero(t, fake.createCalls)
}

func TestTestCreateRejectsHoleInAnswerKey(t *testing.T) {
	fake := &fakeTests{}
	svc := NewTestService(fake, testValidator(), testLogger())

	// Right count, wrong numbering: question 2 missing, stray key 4.
	payload := validTestCreate()
	delete(payload.Answers, "2")
	payload.Answers["4"] = 0

	_, err := svc.Create(context.Background(), "tok", payload)
	require.ErrorIs(t, err, ErrAnswerKeyIncomplete)
	require.Zero(t, fake.createCalls)
}

func TestTestCreateRejectsChoiceOutOfRange(t *testing.T) {
	fake := &fakeTests{}
	svc := NewTestService(fake, testValidator(), testLogger())

	payload := validTestCreate()
	payload.Answers["3"] = 4 // choices are 0..3 for a 4-choice test

	_, err := svc.Create(context.Background(), "tok", payload)
	require.ErrorIs(t, err, ErrAnswerKeyOutOfRange)
	require.Zero(t, fake.createCalls)
}

func TestTestUpdateRejectsInvertedSchedule(t *testing.T) {
	fake := &fakeTests{}
	svc := NewTestService(fake, testValidator(), testLogger())

	start := time.Now()
	end := start.Add(-time.Hour)

	_, err := svc.Update(context.Background(), "tok", testUUID, dto.TestUpdateRequest{
		StartTime: &start,
		EndTime:   &end,
	})
	require.ErrorIs(t, err, ErrScheduleInvalid)
	require.Zero(t, fake.updateCalls)
}

func TestTestUpdateForwardsPartialPayload(t *testing.T) {
	fake := &fakeTests{test: models.Test{ID: testUUID}}
	svc := NewTestService(fake, testValidator(), testLogger())

	name := "Midterm 1 (rescheduled)"
	_, err := svc.Update(context.Background(), "tok", testUUID, dto.TestUpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, 1, fake.updateCalls)
	require.Equal(t, &name, fake.updated.Name)
	require.Nil(t, fake.updated.StartTime)
}

func TestTestTemplateImagePassthrough(t *testing.T) {
	fake := &fakeTests{image: []byte("blank sheet png")}
	svc := NewTestService(fake, testValidator(), testLogger())

	img, err := svc.TemplateImage(context.Background(), "tok", grader.TemplateBlank, testUUID)
	require.NoError(t, err)
	require.Equal(t, []byte("blank sheet png"), img)
}
