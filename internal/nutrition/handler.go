package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mtrann/healthtrack/internal/middleware"
	"github.com/mtrann/healthtrack/internal/telemetry/tracing"
	"github.com/mtrann/healthtrack/internal/users"
	"github.com/mtrann/healthtrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type handlerRepo interface {
	AddFoodItem(ctx context.Context, item *FoodItem) (*FoodItem, error)
	ListFoodItems(ctx context.Context) ([]FoodItem, error)
	FoodItemsForMeals(ctx context.Context, mealIDs []int) ([]FoodItem, error)
	AddMeal(ctx context.Context, meal *Meal) (*Meal, error)
	ListMeals(ctx context.Context) ([]Meal, error)
	AddPlan(ctx context.Context, plan *Plan) (*Plan, error)
	GetPlan(ctx context.Context, id, userID int) (*Plan, error)
	ListPlans(ctx context.Context, userID int) ([]Plan, error)
	DeletePlan(ctx context.Context, id, userID int) error
	GetGoal(ctx context.Context, userID int) (*Goal, error)
	SetGoal(ctx context.Context, goal *Goal) (*Goal, error)
}

type Handler struct {
	repo handlerRepo
}

func NewHandler(repo handlerRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	nutritionRouter := mainRouter.PathPrefix("/nutrition").Subrouter()
	nutritionRouter.HandleFunc("/fooditems", handler.handleAddFoodItem).Methods("POST", "OPTIONS").Name("add-fooditem")
	nutritionRouter.HandleFunc("/fooditems", handler.handleListFoodItems).Methods("GET", "OPTIONS").Name("list-fooditems")
	nutritionRouter.HandleFunc("/meals", handler.handleAddMeal).Methods("POST", "OPTIONS").Name("add-meal")
	nutritionRouter.HandleFunc("/meals", handler.handleListMeals).Methods("GET", "OPTIONS").Name("list-meals")
	nutritionRouter.HandleFunc("/plans", handler.handleAddPlan).Methods("POST", "OPTIONS").Name("add-plan")
	nutritionRouter.HandleFunc("/plans", handler.handleListPlans).Methods("GET", "OPTIONS").Name("list-plans")
	nutritionRouter.HandleFunc("/plans/{id}", handler.handleGetPlan).Methods("GET", "OPTIONS").Name("get-plan")
	nutritionRouter.HandleFunc("/plans/{id}", handler.handleDeletePlan).Methods("DELETE", "OPTIONS").Name("delete-plan")
	nutritionRouter.HandleFunc("/plans/{id}/summary", handler.handlePlanSummary).Methods("GET", "OPTIONS").Name("plan-summary")
	nutritionRouter.HandleFunc("/goal", handler.handleGetGoal).Methods("GET", "OPTIONS").Name("get-goal")
	nutritionRouter.HandleFunc("/goal", handler.handleSetGoal).Methods("PUT", "OPTIONS").Name("set-goal")
	nutritionRouter.Use(middleware.Cors())
}

func (handler *Handler) handleAddFoodItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.addFoodItem")
	defer span.End()

	if !handler.requireAdmin(w, r) {
		return
	}

	var item FoodItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "add failed", http.StatusBadRequest)
		return
	}
	if item.Name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	added, err := handler.repo.AddFoodItem(ctx, &item)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			http.Error(w, "error, food item exists", http.StatusConflict)
			return
		}
		log.Errorf("add food item: %s", err)
		http.Error(w, "add failed", http.StatusInternalServerError)
		return
	}

	handler.writeJson(w, added, http.StatusCreated)
}

func (handler *Handler) handleListFoodItems(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.listFoodItems")
	defer span.End()

	items, err := handler.repo.ListFoodItems(ctx)
	if err != nil {
		log.Errorf("list food items: %s", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []FoodItem{}
	}

	handler.writeJson(w, items, http.StatusOK)
}

func (handler *Handler) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.addMeal")
	defer span.End()

	if !handler.requireAdmin(w, r) {
		return
	}

	var meal Meal
	if err := json.NewDecoder(r.Body).Decode(&meal); err != nil {
		http.Error(w, "add failed", http.StatusBadRequest)
		return
	}
	if meal.Name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	added, err := handler.repo.AddMeal(ctx, &meal)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "unknown food item", http.StatusBadRequest)
			return
		}
		log.Errorf("add meal: %s", err)
		http.Error(w, "add failed", http.StatusInternalServerError)
		return
	}

	handler.writeJson(w, added, http.StatusCreated)
}

func (handler *Handler) handleListMeals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.listMeals")
	defer span.End()

	meals, err := handler.repo.ListMeals(ctx)
	if err != nil {
		log.Errorf("list meals: %s", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if meals == nil {
		meals = []Meal{}
	}

	handler.writeJson(w, meals, http.StatusOK)
}

type planRequest struct {
	Name    string `json:"name"`
	MealIDs []int  `json:"mealIds"`
}

func (handler *Handler) handleAddPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.addPlan")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "add failed", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	plan := &Plan{
		UserID:    session.UserID,
		Name:      req.Name,
		MealIDs:   req.MealIDs,
		CreatedAt: time.Now(),
	}

	added, err := handler.repo.AddPlan(ctx, plan)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "unknown meal", http.StatusBadRequest)
			return
		}
		log.Errorf("add nutrition plan for user %d: %s", session.UserID, err)
		http.Error(w, "add failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("plan.id", added.ID))
	handler.writeJson(w, added, http.StatusCreated)
}

func (handler *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.listPlans")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	plans, err := handler.repo.ListPlans(ctx, session.UserID)
	if err != nil {
		log.Errorf("list nutrition plans for user %d: %s", session.UserID, err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if plans == nil {
		plans = []Plan{}
	}

	handler.writeJson(w, plans, http.StatusOK)
}

func (handler *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.getPlan")
	defer span.End()

	plan, ok := handler.planFromRequest(ctx, w, r)
	if !ok {
		return
	}

	handler.writeJson(w, plan, http.StatusOK)
}

func (handler *Handler) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.deletePlan")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.DeletePlan(ctx, id, session.UserID); err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			http.Error(w, "nutrition plan not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete nutrition plan %d: %s", id, err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

// handlePlanSummary sums calories and macros over every food item of
// every meal in the plan.
func (handler *Handler) handlePlanSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.planSummary")
	defer span.End()

	plan, ok := handler.planFromRequest(ctx, w, r)
	if !ok {
		return
	}

	items, err := handler.repo.FoodItemsForMeals(ctx, plan.MealIDs)
	if err != nil {
		log.Errorf("summarize nutrition plan %d: %s", plan.ID, err)
		http.Error(w, "summary failed", http.StatusInternalServerError)
		return
	}

	handler.writeJson(w, Summarize(items), http.StatusOK)
}

func (handler *Handler) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.getGoal")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	goal, err := handler.repo.GetGoal(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "nutrition goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("get nutrition goal for user %d: %s", session.UserID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	handler.writeJson(w, goal, http.StatusOK)
}

func (handler *Handler) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "nutritionHandler.setGoal")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var goal Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		http.Error(w, "set goal failed", http.StatusBadRequest)
		return
	}
	goal.UserID = session.UserID
	goal.UpdatedAt = time.Now()

	saved, err := handler.repo.SetGoal(ctx, &goal)
	if err != nil {
		log.Errorf("set nutrition goal for user %d: %s", session.UserID, err)
		http.Error(w, "set goal failed", http.StatusInternalServerError)
		return
	}

	handler.writeJson(w, saved, http.StatusOK)
}

func (handler *Handler) planFromRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Plan, bool) {
	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return nil, false
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	plan, err := handler.repo.GetPlan(ctx, id, session.UserID)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			http.Error(w, "nutrition plan not found", http.StatusNotFound)
			return nil, false
		}
		log.Errorf("get nutrition plan %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}

	return plan, true
}

func (handler *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return false
	}
	if session.Role != string(users.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (handler *Handler) writeJson(w http.ResponseWriter, payload interface{}, statusCode int) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payloadJson, statusCode)
}

var _ handlerRepo = (*Repo)(nil)
