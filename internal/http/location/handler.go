package location

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/http/render"
	"github.com/MrJamesThe3rd/schemeportal/internal/location"
)

type Handler struct {
	svc       *location.Service
	maxUpload int64
}

func NewHandler(svc *location.Service, maxUpload int64) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/panchayats", h.createPanchayat)
	r.Get("/panchayats", h.listPanchayats)
	r.Get("/panchayats/{id}/villages", h.listVillages)
	r.Post("/villages", h.createVillage)
	r.Post("/import", h.importSheet)
}

func (h *Handler) createPanchayat(w http.ResponseWriter, r *http.Request) {
	var req location.PanchayatParams
	if err := render.Decode(r, &req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	p, err := h.svc.CreatePanchayat(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, p)
}

func (h *Handler) createVillage(w http.ResponseWriter, r *http.Request) {
	var req location.VillageParams
	if err := render.Decode(r, &req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	v, err := h.svc.CreateVillage(r.Context(), auth.FromContext(r.Context()), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, v)
}

func (h *Handler) listPanchayats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := location.PanchayatFilter{DistrictCode: q.Get("district_code"), BlockCode: q.Get("block_code")}

	if s := q.Get("temp"); s != "" {
		temp, err := strconv.ParseBool(s)
		if err != nil {
			render.BadRequest(w, "temp must be a boolean")
			return
		}

		filter.TempOnly = temp
	}

	panchayats, err := h.svc.ListPanchayats(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, panchayats)
}

func (h *Handler) listVillages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.BadRequest(w, "invalid id")
		return
	}

	villages, err := h.svc.ListVillages(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, villages)
}

// importSheet accepts a multipart upload with the sheet in the "file" field.
func (h *Handler) importSheet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		render.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), auth.FromContext(r.Context()), file)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, res)
}
