// internal/api/handlers/apuracao_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/api/responses"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/billing"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/export"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/ingest"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/returns"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=windows-1252"
)

// ApuracaoHandler exposes the report sessions over HTTP.
type ApuracaoHandler struct {
	ingest    ingest.Service
	billing   billing.Service
	maxUpload int64
	logger    *zap.Logger
}

func NewApuracaoHandler(ingestService ingest.Service, billingService billing.Service, maxUpload int64, logger *zap.Logger) *ApuracaoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApuracaoHandler{
		ingest:    ingestService,
		billing:   billingService,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Register mounts the routes on the given group.
func (h *ApuracaoHandler) Register(group gin.IRoutes) {
	group.POST("/apuracao", h.Create)
	group.GET("/apuracao/:id", h.Get)
	group.GET("/apuracao/:id/periodos/:periodo", h.GetPeriod)
	group.PUT("/apuracao/:id/devolucoes", h.SetReturn)
	group.POST("/apuracao/:id/devolucoes/confirmar", h.ConfirmReturns)
	group.DELETE("/apuracao/:id/devolucoes", h.ResetReturns)
	group.GET("/apuracao/:id/cancelamentos", h.ListCancelled)
	group.POST("/apuracao/:id/cancelamentos", h.MarkCancelled)
	group.DELETE("/apuracao/:id/cancelamentos", h.UnmarkCancelled)
	group.GET("/apuracao/:id/exportar", h.Export)
	group.DELETE("/apuracao/:id", h.Delete)
}

type sessionResponse struct {
	Sessao     *domain.SessionSummary `json:"sessao"`
	Relatorios []domain.PeriodReport  `json:"relatorios"`
	Devolucoes domain.ReturnsState    `json:"devolucoes"`
}

type returnRequest struct {
	CFOP  string `json:"cfop" binding:"required"`
	Valor string `json:"valor" binding:"required"`
}

type cancellationRequest struct {
	Periodo string `json:"periodo" binding:"required"`
	Serie   string `json:"serie"`
	Numero  int    `json:"numero" binding:"required,gt=0"`
}

// Create lida com o upload das planilhas e XMLs e abre uma sessão de apuração.
func (h *ApuracaoHandler) Create(c *gin.Context) {
	if c.Request.ContentLength > h.maxUpload {
		responses.Error(c, http.StatusRequestEntityTooLarge, "Arquivos excedem o tamanho máximo permitido")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.Error(c, http.StatusRequestEntityTooLarge, "Arquivos excedem o tamanho máximo permitido")
			return
		}
		responses.Error(c, http.StatusBadRequest, "Formulário inválido", err.Error())
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		responses.Error(c, http.StatusBadRequest, "Nenhum arquivo foi enviado")
		return
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, header := range headers {
		file, err := readUpload(header)
		if err != nil {
			responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir um dos arquivos", err.Error())
			return
		}
		files = append(files, file)
	}

	items, err := h.ingest.ParseFiles(files)
	if err != nil {
		responses.Error(c, http.StatusUnprocessableEntity, "Erro ao ler os arquivos", err.Error())
		return
	}

	ctx := c.Request.Context()
	summary, err := h.billing.CreateSession(ctx, items)
	if err != nil {
		h.fail(c, err)
		return
	}
	reports, err := h.billing.Reports(ctx, summary.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	state, err := h.billing.Returns(ctx, summary.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	responses.Respond(c, http.StatusCreated, sessionResponse{Sessao: summary, Relatorios: reports, Devolucoes: state}, "Apuração concluída")
}

func readUpload(header *multipart.FileHeader) (domain.UploadedFile, error) {
	file, err := header.Open()
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("erro ao abrir %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("erro ao ler %s: %w", header.Filename, err)
	}
	return domain.UploadedFile{Name: header.Filename, Data: data}, nil
}

func (h *ApuracaoHandler) Get(c *gin.Context) {
	h.respondSession(c, "")
}

func (h *ApuracaoHandler) GetPeriod(c *gin.Context) {
	report, err := h.billing.Report(c.Request.Context(), c.Param("id"), domain.PeriodKey(c.Param("periodo")))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, report, "")
}

// SetReturn grava o valor de devolução de um CFOP.
func (h *ApuracaoHandler) SetReturn(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Requisição inválida", err.Error())
		return
	}
	value, err := ingest.ParseAmount(req.Valor)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Valor de devolução inválido", err.Error())
		return
	}

	if err := h.billing.SetReturnAmount(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.CFOP), value); err != nil {
		h.fail(c, err)
		return
	}
	state, err := h.billing.Returns(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, state, "Devolução registrada")
}

func (h *ApuracaoHandler) ConfirmReturns(c *gin.Context) {
	if _, err := h.billing.ConfirmReturns(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.respondSession(c, "Devoluções confirmadas")
}

func (h *ApuracaoHandler) ResetReturns(c *gin.Context) {
	if err := h.billing.ResetReturns(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.respondSession(c, "Devoluções removidas")
}

// ListCancelled devolve as chaves marcadas como CANC/INUT na sessão.
func (h *ApuracaoHandler) ListCancelled(c *gin.Context) {
	keys, err := h.billing.Cancellations(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, gin.H{"chaves": keys}, "")
}

func (h *ApuracaoHandler) MarkCancelled(c *gin.Context) {
	h.toggleCancelled(c, h.billing.MarkCancelled, "Número marcado como cancelado/inutilizado")
}

func (h *ApuracaoHandler) UnmarkCancelled(c *gin.Context) {
	h.toggleCancelled(c, h.billing.UnmarkCancelled, "Marcação removida")
}

type ledgerOp func(ctx context.Context, id string, period domain.PeriodKey, series string, number int) error

func (h *ApuracaoHandler) toggleCancelled(c *gin.Context, op ledgerOp, message string) {
	var req cancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Requisição inválida", err.Error())
		return
	}
	series := strings.TrimSpace(req.Serie)
	if series == "" {
		series = domain.DefaultSeries
	}
	if err := op(c.Request.Context(), c.Param("id"), domain.PeriodKey(req.Periodo), series, req.Numero); err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, gin.H{"periodo": req.Periodo, "serie": series, "numero": req.Numero}, message)
}

// Export gera a planilha (ou CSV) com os relatórios e a situação dos números faltantes.
func (h *ApuracaoHandler) Export(c *gin.Context) {
	org, exports, err := h.billing.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	stamp := time.Now().Format("20060102_150405")
	switch strings.ToLower(c.DefaultQuery("formato", "xlsx")) {
	case "xlsx":
		data, err := export.Workbook(org, exports)
		if err != nil {
			responses.Error(c, http.StatusInternalServerError, "Erro ao gerar a planilha", err.Error())
			return
		}
		responses.File(c, fmt.Sprintf("Apuracao_%s.xlsx", stamp), contentTypeXLSX, data)
	case "csv":
		data, err := export.CSV(exports)
		if err != nil {
			responses.Error(c, http.StatusInternalServerError, "Erro ao gerar o CSV", err.Error())
			return
		}
		responses.File(c, fmt.Sprintf("Apuracao_%s.csv", stamp), contentTypeCSV, data)
	default:
		responses.Error(c, http.StatusBadRequest, "Formato de exportação inválido: use xlsx ou csv")
	}
}

func (h *ApuracaoHandler) Delete(c *gin.Context) {
	if err := h.billing.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ApuracaoHandler) respondSession(c *gin.Context, message string) {
	ctx := c.Request.Context()
	id := c.Param("id")
	summary, err := h.billing.Summary(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	reports, err := h.billing.Reports(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	state, err := h.billing.Returns(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, sessionResponse{Sessao: summary, Relatorios: reports, Devolucoes: state}, message)
}

// fail maps service errors to HTTP status codes.
func (h *ApuracaoHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrSessionNotFound), errors.Is(err, billing.ErrPeriodNotFound):
		responses.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, returns.ErrUnknownCode), errors.Is(err, returns.ErrNegativeAmount):
		responses.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, billing.ErrNoRecords), errors.Is(err, billing.ErrGapSpanTooLarge):
		responses.Error(c, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("falha na apuração", zap.String("path", c.Request.URL.Path), zap.Error(err))
		responses.Error(c, http.StatusInternalServerError, "Erro interno ao processar a apuração", err.Error())
	}
}
