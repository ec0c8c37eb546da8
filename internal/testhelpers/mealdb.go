package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
)

// Meal is a fake provider record keyed by the provider's field names
// (idMeal, strMeal, strIngredient1..20 and so on).
type Meal map[string]string

// MealDBStub is a fake recipe provider backed by httptest. Filter
// endpoints serve identifier sets derived from the configured meals;
// search and lookup serve the full records.
type MealDBStub struct {
	Server *httptest.Server

	// Meals holds the provider catalog, keyed by meal id.
	Meals map[string]Meal
	// ByIngredient maps an ingredient query to matching meal ids.
	ByIngredient map[string][]string
	// ByArea maps a cuisine query to matching meal ids.
	ByArea map[string][]string
	// FailIngredient makes the filter call for this ingredient fail.
	FailIngredient string
	// FailLookup makes every lookup call fail.
	FailLookup bool

	FilterCalls int32
	LookupCalls int32
	SearchCalls int32
}

// NewMealDBStub starts a fake provider server. Callers own the server
// and must Close it.
func NewMealDBStub() *MealDBStub {
	stub := &MealDBStub{
		Meals:        make(map[string]Meal),
		ByIngredient: make(map[string][]string),
		ByArea:       make(map[string][]string),
	}
	stub.Server = httptest.NewServer(http.HandlerFunc(stub.handle))
	return stub
}

// Close shuts the fake provider down
func (s *MealDBStub) Close() {
	s.Server.Close()
}

// URL returns the provider base URL
func (s *MealDBStub) URL() string {
	return s.Server.URL
}

// Calls returns the total number of provider calls served
func (s *MealDBStub) Calls() int32 {
	return atomic.LoadInt32(&s.FilterCalls) + atomic.LoadInt32(&s.LookupCalls) + atomic.LoadInt32(&s.SearchCalls)
}

func (s *MealDBStub) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch r.URL.Path {
	case "/filter.php":
		atomic.AddInt32(&s.FilterCalls, 1)
		if ingredient := q.Get("i"); ingredient != "" {
			if ingredient == s.FailIngredient {
				http.Error(w, "provider failure", http.StatusInternalServerError)
				return
			}
			s.writeSummaries(w, s.ByIngredient[ingredient])
			return
		}
		s.writeSummaries(w, s.ByArea[q.Get("a")])
	case "/lookup.php":
		atomic.AddInt32(&s.LookupCalls, 1)
		if s.FailLookup {
			http.Error(w, "provider failure", http.StatusInternalServerError)
			return
		}
		meal, ok := s.Meals[q.Get("i")]
		if !ok {
			writeMeals(w, nil)
			return
		}
		writeMeals(w, []Meal{meal})
	case "/search.php":
		atomic.AddInt32(&s.SearchCalls, 1)
		ids := make([]string, 0, len(s.Meals))
		for id := range s.Meals {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		meals := make([]Meal, 0, len(ids))
		for _, id := range ids {
			meals = append(meals, s.Meals[id])
		}
		writeMeals(w, meals)
	default:
		http.NotFound(w, r)
	}
}

func (s *MealDBStub) writeSummaries(w http.ResponseWriter, ids []string) {
	if len(ids) == 0 {
		writeMeals(w, nil)
		return
	}
	meals := make([]Meal, 0, len(ids))
	for _, id := range ids {
		summary := Meal{"idMeal": id}
		if full, ok := s.Meals[id]; ok {
			summary["strMeal"] = full["strMeal"]
			summary["strMealThumb"] = full["strMealThumb"]
		}
		meals = append(meals, summary)
	}
	writeMeals(w, meals)
}

func writeMeals(w http.ResponseWriter, meals []Meal) {
	w.Header().Set("Content-Type", "application/json")
	// The real provider sends {"meals":null} for no matches.
	if meals == nil {
		_, _ = w.Write([]byte(`{"meals":null}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string][]Meal{"meals": meals})
}
