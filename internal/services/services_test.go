package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/airpen/airpen-backend/internal/repos"
	"github.com/airpen/airpen-backend/internal/repos/testutil"
	"github.com/airpen/airpen-backend/internal/requestdata"
	"github.com/airpen/airpen-backend/internal/services"
	"github.com/airpen/airpen-backend/internal/types"
)

func authedCtx(user *types.User) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		TokenIdentifier: user.TokenIdentifier,
		UserID:          user.ID,
	})
}

// tokenOnlyCtx models a valid identity whose user row is not stored yet.
func tokenOnlyCtx(token string) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		TokenIdentifier: token,
		UserID:          uuid.Nil,
	})
}

func TestUserService_StoreCreatesThenPatches(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewUserService(gdb, log, repos.NewUserRepo(gdb, log))

	ctx := tokenOnlyCtx("issuer|alice")
	created, err := svc.Store(ctx, services.StoreUserInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	require.Equal(t, "issuer|alice", created.TokenIdentifier)
	require.Equal(t, "Alice", created.Name)

	// Second sign-in with fresher profile data patches the same row.
	again, err := svc.Store(authedCtx(created), services.StoreUserInput{Name: "Alice Liddell", Email: "alice@example.com"})
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
	require.Equal(t, "Alice Liddell", again.Name)

	var count int64
	require.NoError(t, gdb.Model(&types.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUserService_StoreRequiresIdentity(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewUserService(gdb, log, repos.NewUserRepo(gdb, log))

	_, err := svc.Store(context.Background(), services.StoreUserInput{Name: "Nobody"})
	require.ErrorIs(t, err, services.ErrNotAuthenticated)
}

func TestUserService_GetMe(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewUserService(gdb, log, repos.NewUserRepo(gdb, log))

	user := testutil.SeedUser(t, gdb, "issuer|alice")
	me, err := svc.GetMe(authedCtx(user))
	require.NoError(t, err)
	require.Equal(t, user.ID, me.ID)

	_, err = svc.GetMe(tokenOnlyCtx("issuer|ghost"))
	require.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestRecordingService_ListScopesToCaller(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewRecordingService(gdb, log, repos.NewRecordingRepo(gdb, log))

	alice := testutil.SeedUser(t, gdb, "issuer|alice")
	bob := testutil.SeedUser(t, gdb, "issuer|bob")
	testutil.SeedRecording(t, gdb, alice.ID, "alice-lecture")
	testutil.SeedRecording(t, gdb, bob.ID, "bob-lecture")

	listed, err := svc.List(authedCtx(alice))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "alice-lecture", listed[0].Title)

	// Unauthenticated reads degrade to empty, not to an error.
	empty, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestRecordingService_GetByIDDoesNotCheckOwnership(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewRecordingService(gdb, log, repos.NewRecordingRepo(gdb, log))

	alice := testutil.SeedUser(t, gdb, "issuer|alice")
	bob := testutil.SeedUser(t, gdb, "issuer|bob")
	rec := testutil.SeedRecording(t, gdb, alice.ID, "alice-lecture")

	// Any authenticated caller who knows the id can fetch it.
	got, err := svc.GetByID(authedCtx(bob), rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)

	_, err = svc.GetByID(context.Background(), rec.ID)
	require.ErrorIs(t, err, services.ErrNotAuthenticated)

	_, err = svc.GetByID(authedCtx(alice), uuid.New())
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestModuleService_UpdateProgressPatchesOnlyProgress(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewModuleService(gdb, log, repos.NewModuleRepo(gdb, log))

	alice := testutil.SeedUser(t, gdb, "issuer|alice")
	created, err := svc.Create(authedCtx(alice), services.CreateModuleInput{
		Title:       "Thermodynamics",
		Description: "Heat and entropy",
		Content: &types.ModuleContent{
			Overview: "An overview",
			Lessons:  []types.Lesson{{ID: 1, Title: "Intro", Content: "<p>hi</p>"}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 0, created.Progress)

	updated, err := svc.UpdateProgress(authedCtx(alice), created.ID, 42)
	require.NoError(t, err)
	require.Equal(t, 42, updated.Progress)
	require.Equal(t, "Thermodynamics", updated.Title)
	require.Equal(t, "Heat and entropy", updated.Description)
	require.JSONEq(t, string(created.Content), string(updated.Content))
}

func TestModuleService_ListUnauthenticatedIsEmpty(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewModuleService(gdb, log, repos.NewModuleRepo(gdb, log))

	alice := testutil.SeedUser(t, gdb, "issuer|alice")
	testutil.SeedModule(t, gdb, alice.ID, "Thermodynamics")

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, listed)
}

func scoringModule(t *testing.T, svc services.ModuleService, ctx context.Context) *types.Module {
	t.Helper()
	module, err := svc.Create(ctx, services.CreateModuleInput{
		Title: "Quiz Host",
		Content: &types.ModuleContent{
			Quizzes: []types.Quiz{
				{
					ID:    1,
					Title: "Quiz Host Quiz",
					Questions: []types.QuizQuestion{
						{ID: 1, Question: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: 0},
						{ID: 2, Question: "Q2", Options: []string{"a", "b", "c", "d"}, Answer: 1},
						{ID: 3, Question: "Q3", Options: []string{"a", "b", "c", "d"}, Answer: 2},
					},
				},
			},
		},
	})
	require.NoError(t, err)
	return module
}

func TestQuizService_Score(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	moduleSvc := services.NewModuleService(gdb, log, repos.NewModuleRepo(gdb, log))
	svc := services.NewQuizService(log, moduleSvc)

	alice := testutil.SeedUser(t, gdb, "issuer|alice")
	ctx := authedCtx(alice)
	module := scoringModule(t, moduleSvc, ctx)

	all, err := svc.Score(ctx, module.ID, 1, []int{0, 1, 2})
	require.NoError(t, err)
	require.Equal(t, &services.QuizScore{Correct: 3, Total: 3, Percentage: 100}, all)

	none, err := svc.Score(ctx, module.ID, 1, []int{3, 3, 3})
	require.NoError(t, err)
	require.Equal(t, &services.QuizScore{Correct: 0, Total: 3, Percentage: 0}, none)

	// 2 of 3 rounds to 67.
	two, err := svc.Score(ctx, module.ID, 1, []int{0, 1, 3})
	require.NoError(t, err)
	require.Equal(t, &services.QuizScore{Correct: 2, Total: 3, Percentage: 67}, two)

	_, err = svc.Score(ctx, module.ID, 99, []int{0})
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestQuizService_OutOfBoundsStoredAnswerNeverCorrect(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	moduleSvc := services.NewModuleService(gdb, log, repos.NewModuleRepo(gdb, log))
	svc := services.NewQuizService(log, moduleSvc)

	alice := testutil.SeedUser(t, gdb, "issuer|alice")
	ctx := authedCtx(alice)
	module, err := moduleSvc.Create(ctx, services.CreateModuleInput{
		Title: "Broken Quiz",
		Content: &types.ModuleContent{
			Quizzes: []types.Quiz{
				{
					ID:    1,
					Title: "Broken",
					Questions: []types.QuizQuestion{
						{ID: 1, Question: "Q1", Options: []string{"a", "b"}, Answer: 7},
					},
				},
			},
		},
	})
	require.NoError(t, err)

	score, err := svc.Score(ctx, module.ID, 1, []int{7})
	require.NoError(t, err)
	require.Equal(t, 0, score.Correct)
}

func TestNoteService_UpdatePatchesAndRewritesDate(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewNoteService(gdb, log, repos.NewNoteRepo(gdb, log))

	alice := testutil.SeedUser(t, gdb, "issuer|alice")
	ctx := authedCtx(alice)
	created, err := svc.Create(ctx, services.CreateNoteInput{
		Title:   "Lecture 1",
		Content: "original",
		Tags:    []string{"Recording", "Lecture"},
	})
	require.NoError(t, err)

	newContent := "revised"
	updated, err := svc.Update(ctx, created.ID, services.UpdateNoteInput{Content: &newContent})
	require.NoError(t, err)
	require.Equal(t, "Lecture 1", updated.Title)
	require.Equal(t, "revised", updated.Content)
	require.False(t, updated.Date.Before(created.Date))

	var tags []string
	require.NoError(t, json.Unmarshal(updated.Tags, &tags))
	require.Equal(t, []string{"Recording", "Lecture"}, tags)
}

func TestNoteService_Delete(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	svc := services.NewNoteService(gdb, log, repos.NewNoteRepo(gdb, log))

	alice := testutil.SeedUser(t, gdb, "issuer|alice")
	ctx := authedCtx(alice)
	note := testutil.SeedNote(t, gdb, alice.ID, "drop")

	require.NoError(t, svc.Delete(ctx, note.ID))
	require.ErrorIs(t, svc.Delete(ctx, note.ID), services.ErrNotFound)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestMutationsRejectUnstoredIdentity(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := tokenOnlyCtx("issuer|ghost")

	_, err := services.NewRecordingService(gdb, log, repos.NewRecordingRepo(gdb, log)).
		Store(ctx, services.StoreRecordingInput{Title: "t", AudioURL: "u"})
	require.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = services.NewModuleService(gdb, log, repos.NewModuleRepo(gdb, log)).
		Create(ctx, services.CreateModuleInput{Title: "t"})
	require.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = services.NewNoteService(gdb, log, repos.NewNoteRepo(gdb, log)).
		Create(ctx, services.CreateNoteInput{Title: "t"})
	require.ErrorIs(t, err, services.ErrUserNotFound)
}
