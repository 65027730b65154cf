package budget

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/budget"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/http/render"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req budget.CreateParams
	if err := render.Decode(r, &req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	head, err := h.svc.Create(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(head))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := budget.ListFilter{DistrictID: r.URL.Query().Get("district_id")}

	if s := r.URL.Query().Get("fiscal_year"); s != "" {
		fy, err := fiscal.Parse(s)
		if err != nil {
			render.BadRequest(w, err.Error())
			return
		}

		filter.FiscalYear = &fy
	}

	if s := r.URL.Query().Get("include_deleted"); s != "" {
		include, err := strconv.ParseBool(s)
		if err != nil {
			render.BadRequest(w, "include_deleted must be a boolean")
			return
		}

		filter.IncludeDeleted = include
	}

	heads, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponseList(heads))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.BadRequest(w, "invalid id")
		return
	}

	head, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(head))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.BadRequest(w, "invalid id")
		return
	}

	var req budget.UpdateParams
	if err := render.Decode(r, &req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	head, err := h.svc.Update(r.Context(), auth.FromContext(r.Context()), id, req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(head))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.BadRequest(w, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), auth.FromContext(r.Context()), id); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
