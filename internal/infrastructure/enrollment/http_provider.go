// Package enrollment adapta el proveedor externo de matrículas (servicio de
// secretaría académica) al puerto reports.EnrollmentProvider.
package enrollment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tu-usuario/almacen-escolar/internal/application/reports"
)

var _ reports.EnrollmentProvider = (*HTTPProvider)(nil)

// HTTPProvider consulta GET {base}/headcounts?group={key} en cada render.
// Sin caché: la demanda siempre se lee fresca del colaborador.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider construye el adaptador con timeout propio.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Headcount devuelve la cantidad de alumnos para la clave de agrupación.
func (p *HTTPProvider) Headcount(ctx context.Context, groupKey string) (int64, error) {
	endpoint := fmt.Sprintf("%s/headcounts?group=%s", p.baseURL, url.QueryEscape(groupKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("crear request de matrículas: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("consultar matrículas: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("proveedor de matrículas respondió %d", resp.StatusCode)
	}
	var body struct {
		Group string `json:"group"`
		Count int64  `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decodificar matrículas: %w", err)
	}
	return body.Count, nil
}
