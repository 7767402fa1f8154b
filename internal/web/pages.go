package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/samara-beach/internal/model"
	"github.com/Leganyst/samara-beach/internal/samara"
	"github.com/Leganyst/samara-beach/internal/service"
)

type listView struct {
	Title   string
	Message string
	Page    samara.Page[model.SamaraBooking]
}

type formView struct {
	Title        string
	Message      string
	Action       string
	Submit       string
	EmailPattern string
	Values       map[string]string
	Errors       map[string]string
}

type notFoundView struct {
	Title   string
	Message string
}

func pageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (h *handler) listPage(c *gin.Context) {
	h.renderList(c, http.StatusOK, pageParam(c.Query("page")), "")
}

// renderList загружает страницу page и отрисовывает её; message выводится
// баннером над таблицей.
func (h *handler) renderList(c *gin.Context, status, page int, message string) {
	take, skip := samara.Window(page, h.pageSize)
	v := listView{Title: "Samara Beach bookings", Message: message}

	res, err := h.svc.List(c.Request.Context(), take, skip)
	if err != nil {
		v.Message = err.Error()
		v.Page = samara.NewPage[model.SamaraBooking](nil, 0, page, h.pageSize)
		c.HTML(http.StatusInternalServerError, "list.html", v)
		return
	}
	v.Page = samara.NewPage(res.Bookings, int(res.TotalCount), page, h.pageSize)
	c.HTML(status, "list.html", v)
}

func newFormView(title, action, submit string) formView {
	return formView{
		Title:        title,
		Action:       action,
		Submit:       submit,
		EmailPattern: EmailPattern,
		Values:       map[string]string{},
		Errors:       map[string]string{},
	}
}

func (h *handler) createForm(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", newFormView("New booking", CreatePath, "Create booking"))
}

func (h *handler) createSubmit(c *gin.Context) {
	v := newFormView("New booking", CreatePath, "Create booking")
	fields, ok := h.formFields(c, &v)
	if !ok {
		return
	}
	h.finishForm(c, v, h.svc.Create(c.Request.Context(), fields))
}

func (h *handler) editForm(c *gin.Context) {
	id := c.Param("id")
	b, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "notfound.html", notFoundView{Title: "Booking unavailable", Message: err.Error()})
		return
	}
	if b == nil {
		c.HTML(http.StatusNotFound, "notfound.html", notFoundView{Title: "Booking not found"})
		return
	}

	v := newFormView("Edit booking", editURL(id), "Update booking")
	v.Values = map[string]string{
		samara.FieldName:               b.Name,
		samara.FieldEmail:              b.Email,
		samara.FieldPhone:              b.Phone,
		samara.FieldMembersCount:       strconv.Itoa(b.MembersCount),
		samara.FieldBelowTwoYearsCount: strconv.Itoa(b.BelowTwoYearsCount),
		samara.FieldDate:               b.DateString(),
	}
	c.HTML(http.StatusOK, "form.html", v)
}

func (h *handler) editSubmit(c *gin.Context) {
	id := c.Param("id")
	v := newFormView("Edit booking", editURL(id), "Update booking")
	fields, ok := h.formFields(c, &v)
	if !ok {
		return
	}
	h.finishForm(c, v, h.svc.Update(c.Request.Context(), id, fields))
}

func (h *handler) deleteSubmit(c *gin.Context) {
	page := pageParam(c.PostForm("page"))
	res := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if !res.OK() {
		h.renderList(c, http.StatusInternalServerError, page, res.Message)
		return
	}
	c.Redirect(http.StatusSeeOther, pageURL(page))
}

// formFields разбирает тело формы и запоминает введённые значения для
// повторной отрисовки.
func (h *handler) formFields(c *gin.Context, v *formView) (samara.Fields, bool) {
	if err := c.Request.ParseForm(); err != nil {
		v.Message = "Could not read the submitted form."
		c.HTML(http.StatusBadRequest, "form.html", *v)
		return nil, false
	}
	for k, vals := range c.Request.PostForm {
		if len(vals) > 0 {
			v.Values[k] = vals[len(vals)-1]
		}
	}
	return samara.FieldsFromForm(c.Request.PostForm), true
}

func (h *handler) finishForm(c *gin.Context, v formView, res service.Result) {
	switch res.Outcome {
	case service.OutcomeOK:
		c.Redirect(http.StatusSeeOther, ListPath)
	case service.OutcomeInvalid:
		for field := range res.Errors {
			v.Errors[field] = res.Errors.First(field)
		}
		c.HTML(http.StatusUnprocessableEntity, "form.html", v)
	default:
		v.Message = res.Message
		c.HTML(http.StatusInternalServerError, "form.html", v)
	}
}
