package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charnnections/internal/attr"
	"charnnections/internal/puzzle"
	"charnnections/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	puzzle    *store.DailyPuzzle
	err       error
	setDate   string
	setInputs []puzzle.GroupInput
	checked   []int64
}

func (f *fakeService) Today(context.Context) (*store.DailyPuzzle, error) {
	return f.puzzle, f.err
}

func (f *fakeService) CheckGuess(_ context.Context, puzzleID string, ids []int64) (puzzle.Verdict, error) {
	f.checked = ids
	if f.err != nil {
		return puzzle.Verdict{}, f.err
	}
	if puzzleID != f.puzzle.ID {
		return puzzle.Verdict{}, fmt.Errorf("%w: %s", puzzle.ErrNotFound, puzzleID)
	}
	return puzzle.Check(f.puzzle.Groups, ids)
}

func (f *fakeService) Solution(_ context.Context, puzzleID string) (*store.DailyPuzzle, error) {
	if f.err != nil {
		return nil, f.err
	}
	if puzzleID != f.puzzle.ID {
		return nil, puzzle.ErrNotFound
	}
	return f.puzzle, nil
}

func (f *fakeService) SetPuzzle(_ context.Context, date string, inputs []puzzle.GroupInput) (*store.DailyPuzzle, error) {
	f.setDate = date
	f.setInputs = inputs
	return f.puzzle, f.err
}

func (f *fakeService) RegenerateToday(context.Context) (*store.DailyPuzzle, error) {
	return f.puzzle, f.err
}

func testPuzzle() *store.DailyPuzzle {
	p := &store.DailyPuzzle{ID: "3f1c7a52-0d1e-4a4b-9a51-1f0c2c3d4e5f", Date: "2024-01-01"}
	traits := []string{"affiliation", "gender", "age", "isHuman"}
	values := []attr.Value{attr.String("Leaf"), attr.String("female"), attr.Number(16), attr.Bool(false)}
	for g := range traits {
		group := store.PuzzleGroup{Trait: traits[g], TraitValue: values[g], Difficulty: g + 1}
		for i := 0; i < 4; i++ {
			id := int64(g*4 + i + 1)
			group.Characters = append(group.Characters, store.CharacterRef{ID: id, Name: fmt.Sprintf("Character %d", id)})
		}
		p.Groups = append(p.Groups, group)
	}
	return p
}

func noShuffle(int, func(i, j int)) {}

func do(t *testing.T, svc PuzzleService, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewServer(svc, nil, WithShuffle(noShuffle)).SetupRouter().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	w := do(t, &fakeService{}, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetrics(t *testing.T) {
	w := do(t, &fakeService{}, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestToday(t *testing.T) {
	svc := &fakeService{puzzle: testPuzzle()}
	w := do(t, svc, http.MethodGet, "/api/game/today", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[TodayResponse](t, w)
	assert.Equal(t, svc.puzzle.ID, resp.PuzzleID)
	assert.Equal(t, "2024-01-01", resp.Date)
	require.Len(t, resp.Characters, 16)
	assert.Equal(t, int64(1), resp.Characters[0].ID)
	assert.NotContains(t, w.Body.String(), "affiliation", "the board must not reveal groups")
}

func TestTodayShufflesBoard(t *testing.T) {
	svc := &fakeService{puzzle: testPuzzle()}
	reverse := func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/api/game/today", nil)
	w := httptest.NewRecorder()
	NewServer(svc, nil, WithShuffle(reverse)).SetupRouter().ServeHTTP(w, req)

	resp := decode[TodayResponse](t, w)
	require.Len(t, resp.Characters, 16)
	assert.Equal(t, int64(16), resp.Characters[0].ID)
	assert.Equal(t, int64(1), resp.Characters[15].ID)
}

func TestTodayErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"exhausted", &puzzle.GenerationExhaustedError{Attempts: 50, Last: puzzle.ErrInsufficientData}, http.StatusServiceUnavailable},
		{"database", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, &fakeService{err: tt.err}, http.MethodGet, "/api/game/today", nil)
			assert.Equal(t, tt.code, w.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestCheck(t *testing.T) {
	p := testPuzzle()

	t.Run("correct", func(t *testing.T) {
		w := do(t, &fakeService{puzzle: p}, http.MethodPost, "/api/game/"+p.ID+"/check", CheckRequest{IDs: []int64{8, 6, 7, 5}})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[CheckResponse](t, w)
		assert.True(t, resp.Correct)
		assert.Equal(t, "gender", resp.Trait)
		require.NotNil(t, resp.TraitValue)
		assert.Equal(t, attr.String("female"), *resp.TraitValue)
		assert.Equal(t, 2, resp.Difficulty)
		assert.Len(t, resp.Characters, 4)
	})

	t.Run("incorrect reveals nothing", func(t *testing.T) {
		w := do(t, &fakeService{puzzle: p}, http.MethodPost, "/api/game/"+p.ID+"/check", CheckRequest{IDs: []int64{1, 2, 3, 5}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"correct":false}`, w.Body.String())
	})

	t.Run("malIds body", func(t *testing.T) {
		w := do(t, &fakeService{puzzle: p}, http.MethodPost, "/api/game/"+p.ID+"/check", map[string]any{"malIds": []int64{8, 6, 7, 5}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[CheckResponse](t, w).Correct)
	})

	t.Run("wrong count", func(t *testing.T) {
		w := do(t, &fakeService{puzzle: p}, http.MethodPost, "/api/game/"+p.ID+"/check", CheckRequest{IDs: []int64{1, 2}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := do(t, &fakeService{puzzle: p}, http.MethodPost, "/api/game/"+p.ID+"/check", map[string]any{"ids": "1,2,3,4"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown puzzle", func(t *testing.T) {
		w := do(t, &fakeService{puzzle: p}, http.MethodPost, "/api/game/nope/check", CheckRequest{IDs: []int64{1, 2, 3, 4}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSolution(t *testing.T) {
	p := testPuzzle()

	w := do(t, &fakeService{puzzle: p}, http.MethodGet, "/api/game/"+p.ID+"/solution", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[SolutionResponse](t, w)
	assert.Equal(t, p.Date, resp.Date)
	require.Len(t, resp.Groups, 4)
	assert.Equal(t, "age", resp.Groups[2].Trait)
	assert.Equal(t, attr.Number(16), resp.Groups[2].Value)
	assert.Len(t, resp.Groups[2].Characters, 4)

	w = do(t, &fakeService{puzzle: p}, http.MethodGet, "/api/game/other/solution", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetPuzzle(t *testing.T) {
	svc := &fakeService{puzzle: testPuzzle()}
	body := `{"date":"2024-01-01","groups":[
		{"trait":"affiliation","traitValue":"Leaf","difficulty":1,"ids":[1,2,3,4]},
		{"trait":"gender","traitValue":"female","ids":[5,6,7,8]},
		{"trait":"age","traitValue":16,"ids":[9,10,11,12]},
		{"trait":"isHuman","traitValue":false,"ids":[13,14,15,16]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/set-puzzle", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewServer(svc, nil).SetupRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2024-01-01", svc.setDate)
	require.Len(t, svc.setInputs, 4)
	assert.Equal(t, attr.Number(16), svc.setInputs[2].TraitValue)
	assert.Equal(t, attr.Bool(false), svc.setInputs[3].TraitValue)
	assert.Equal(t, 0, svc.setInputs[1].Difficulty)
	assert.Equal(t, []int64{1, 2, 3, 4}, svc.setInputs[0].IDs)

	resp := decode[PuzzleCreatedResponse](t, w)
	assert.Equal(t, "Puzzle set for 2024-01-01", resp.Message)
	assert.Len(t, resp.Groups, 4)
}

func TestSetPuzzle_MalIDsAndMissingValue(t *testing.T) {
	svc := &fakeService{puzzle: testPuzzle()}
	body := `{"groups":[{"trait":"affiliation","malIds":[1,2,3,4]},{"trait":"age","traitValue":null,"ids":[5,6,7,8]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/set-puzzle", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewServer(svc, nil).SetupRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, svc.setInputs, 2)
	assert.Equal(t, []int64{1, 2, 3, 4}, svc.setInputs[0].IDs)
	assert.True(t, svc.setInputs[0].TraitValue.IsZero())
	assert.True(t, svc.setInputs[1].TraitValue.IsZero())
}

func TestSetPuzzleErrors(t *testing.T) {
	validation := &fakeService{err: &puzzle.ValidationError{Reason: "must provide exactly 4 groups, got 1"}}
	w := do(t, validation, http.MethodPost, "/api/admin/set-puzzle", SetPuzzleRequest{Groups: []SetPuzzleGroup{{Trait: "a"}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exactly 4 groups")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/set-puzzle", bytes.NewBufferString(`{"groups":[{"traitValue":{"nested":true}}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	NewServer(&fakeService{}, nil).SetupRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegenerateToday(t *testing.T) {
	svc := &fakeService{puzzle: testPuzzle()}
	w := do(t, svc, http.MethodPost, "/api/admin/regenerate-today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[PuzzleCreatedResponse](t, w)
	assert.Equal(t, svc.puzzle.ID, resp.PuzzleID)
	assert.Equal(t, "Regenerated puzzle for 2024-01-01", resp.Message)
}
