package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helixir/procurement-service/internal/domain"
)

// createSupplier handles POST /proveedores.
func (s *Server) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req domain.SupplierCreate
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	supplier, err := s.suppliers.Create(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, supplier)
}

// listSuppliers handles GET /proveedores.
func (s *Server) listSuppliers(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	suppliers, err := s.suppliers.GetAll(r.Context(), page.Ordered())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(suppliers))
}

// getSupplier handles GET /proveedores/{id}.
func (s *Server) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	supplier, err := s.suppliers.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

// updateSupplier handles PUT /proveedores/{id}. Only fields present in the
// body are written.
func (s *Server) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.SupplierUpdate
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	supplier, err := s.suppliers.Update(r.Context(), id, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

// deleteSupplier handles DELETE /proveedores/{id}.
func (s *Server) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := s.suppliers.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// searchSuppliers handles GET /proveedores/buscar/nombre?nombre=.
func (s *Server) searchSuppliers(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("nombre"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "nombre is required")
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	suppliers, err := s.suppliers.SearchByName(r.Context(), name, page)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(suppliers))
}

// getSupplierByTaxID handles GET /proveedores/nit/{nit}.
func (s *Server) getSupplierByTaxID(w http.ResponseWriter, r *http.Request) {
	nit := chi.URLParam(r, "nit")

	supplier, err := s.suppliers.FindByTaxID(r.Context(), nit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

// createPurchase handles POST /compras-proveedor.
func (s *Server) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseCreate
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	purchase, err := s.purchases.Create(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchase)
}

// listPurchases handles GET /compras-proveedor, newest first.
func (s *Server) listPurchases(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	purchases, err := s.purchases.GetAll(r.Context(), page.Ordered())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(purchases))
}

// listSupplierPurchases handles GET /compras-proveedor/proveedor/{id}.
func (s *Server) listSupplierPurchases(w http.ResponseWriter, r *http.Request) {
	supplierID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	purchases, err := s.purchases.GetBySupplier(r.Context(), supplierID, page)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(purchases))
}

// getPurchase handles GET /compras-proveedor/{id}.
func (s *Server) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	purchase, err := s.purchases.GetByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

// updatePurchase handles PUT /compras-proveedor/{id}.
func (s *Server) updatePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req domain.PurchaseUpdate
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	purchase, err := s.purchases.Update(r.Context(), id, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

// deletePurchase handles DELETE /compras-proveedor/{id}.
func (s *Server) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := s.purchases.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}
