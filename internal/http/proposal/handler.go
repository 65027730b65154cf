package proposal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/http/render"
	"github.com/MrJamesThe3rd/schemeportal/internal/proposal"
)

type Handler struct {
	svc *proposal.Service
}

func NewHandler(svc *proposal.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Get("/{id}/project", h.project)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req proposal.CreateParams
	if err := render.Decode(r, &req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	res, err := h.svc.Create(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, createResponse{
		Proposal: toProposalResponse(res.Proposal),
		Project:  toProjectResponse(res.Project),
		Progress: toProgressResponse(res.Progress),
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := proposal.ListFilter{StateCode: q.Get("state_code"), DistrictID: q.Get("district_id")}

	if s := q.Get("fiscal_year"); s != "" {
		fy, err := fiscal.Parse(s)
		if err != nil {
			render.BadRequest(w, err.Error())
			return
		}

		filter.FiscalYear = &fy
	}

	proposals, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]proposalResponse, len(proposals))
	for i, p := range proposals {
		resp[i] = toProposalResponse(p)
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.BadRequest(w, "invalid id")
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toProposalResponse(p))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.BadRequest(w, "invalid id")
		return
	}

	var req proposal.UpdateParams
	if err := render.Decode(r, &req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	p, err := h.svc.Update(r.Context(), auth.FromContext(r.Context()), id, req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toProposalResponse(p))
}

// project returns the project derived from a proposal together with its
// progress record.
func (h *Handler) project(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.BadRequest(w, "invalid id")
		return
	}

	proj, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	prog, err := h.svc.GetProgress(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, projectResponse{
		projectFields: toProjectResponse(proj),
		Progress:      toProgressResponse(prog),
	})
}
