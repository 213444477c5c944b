package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/meridianscm/meridian/pkg/httputil"
)

// registerReportRoutes registers the aggregate report endpoints. Reports run
// against the shared tables and are available to any authenticated caller;
// they expose aggregates, not scoped rows.
func (s *Server) registerReportRoutes(router *mux.Router) {
	router.HandleFunc("/api/reports/sales-by-status", s.SalesByStatus).Methods(http.MethodPost)
	router.HandleFunc("/api/reports/average-price-by-category", s.AveragePriceByCategory).Methods(http.MethodPost)
	router.HandleFunc("/api/reports/orders-by-city", s.OrdersByCity).Methods(http.MethodPost)
	router.HandleFunc("/api/reports/suppliers-above-price", s.SuppliersAbovePrice).Methods(http.MethodPost)
}

// SalesByStatus sums order totals for orders whose payment has the given
// status
func (s *Server) SalesByStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Status, "status") {
		return
	}

	rows, err := s.entities.DB().QueryContext(r.Context(), `
		SELECT p.status, COUNT(o.order_id) AS total_orders, COALESCE(SUM(o.total_amount), 0) AS total_revenue
		FROM orders o
		JOIN payment p ON o.payment_id = p.payment_id
		WHERE p.status = $1
		GROUP BY p.status
	`, req.Status)
	if err != nil {
		s.logger.WithError(err).Error("Sales report failed")
		httputil.WriteStorageFault(w)
		return
	}
	defer rows.Close()

	results := []map[string]interface{}{}
	for rows.Next() {
		var status string
		var totalOrders int64
		var totalRevenue float64
		if err := rows.Scan(&status, &totalOrders, &totalRevenue); err != nil {
			s.logger.WithError(err).Error("Sales report scan failed")
			httputil.WriteStorageFault(w)
			return
		}
		results = append(results, map[string]interface{}{
			"status":        status,
			"total_orders":  totalOrders,
			"total_revenue": totalRevenue,
		})
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Error("Sales report failed")
		httputil.WriteStorageFault(w)
		return
	}
	httputil.WriteSuccess(w, results)
}

// AveragePriceByCategory averages product prices per category matching the
// given substring
func (s *Server) AveragePriceByCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	rows, err := s.entities.DB().QueryContext(r.Context(), `
		SELECT category, COUNT(product_id) AS product_count, AVG(unit_price) AS average_price
		FROM product
		WHERE category LIKE '%' || $1 || '%'
		GROUP BY category
	`, req.Category)
	if err != nil {
		s.logger.WithError(err).Error("Price report failed")
		httputil.WriteStorageFault(w)
		return
	}
	defer rows.Close()

	results := []map[string]interface{}{}
	for rows.Next() {
		var category string
		var count int64
		var avg float64
		if err := rows.Scan(&category, &count, &avg); err != nil {
			s.logger.WithError(err).Error("Price report scan failed")
			httputil.WriteStorageFault(w)
			return
		}
		results = append(results, map[string]interface{}{
			"category":      category,
			"product_count": count,
			"average_price": avg,
		})
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Error("Price report failed")
		httputil.WriteStorageFault(w)
		return
	}
	httputil.WriteSuccess(w, results)
}

// OrdersByCity joins orders with customers in cities matching the given
// substring
func (s *Server) OrdersByCity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City string `json:"city"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	rows, err := s.entities.DB().QueryContext(r.Context(), `
		SELECT o.order_id, o.total_amount, c.customer_name, c.city
		FROM orders o
		JOIN customer c ON o.customer_id = c.customer_id
		WHERE c.city LIKE '%' || $1 || '%'
	`, req.City)
	if err != nil {
		s.logger.WithError(err).Error("City report failed")
		httputil.WriteStorageFault(w)
		return
	}
	defer rows.Close()

	results := []map[string]interface{}{}
	for rows.Next() {
		var orderID, customerName, city string
		var totalAmount float64
		if err := rows.Scan(&orderID, &totalAmount, &customerName, &city); err != nil {
			s.logger.WithError(err).Error("City report scan failed")
			httputil.WriteStorageFault(w)
			return
		}
		results = append(results, map[string]interface{}{
			"order_id":      orderID,
			"total_amount":  totalAmount,
			"customer_name": customerName,
			"city":          city,
		})
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Error("City report failed")
		httputil.WriteStorageFault(w)
		return
	}
	httputil.WriteSuccess(w, results)
}

// SuppliersAbovePrice lists suppliers that supply at least one product above
// the given unit price
func (s *Server) SuppliersAbovePrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MinPrice float64 `json:"min_price"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	rows, err := s.entities.DB().QueryContext(r.Context(), `
		SELECT supplier_name, city
		FROM supplier
		WHERE supplier_id IN (
			SELECT supplier_id FROM product WHERE unit_price > $1
		)
	`, req.MinPrice)
	if err != nil {
		s.logger.WithError(err).Error("Supplier report failed")
		httputil.WriteStorageFault(w)
		return
	}
	defer rows.Close()

	results := []map[string]interface{}{}
	for rows.Next() {
		var name, city string
		if err := rows.Scan(&name, &city); err != nil {
			s.logger.WithError(err).Error("Supplier report scan failed")
			httputil.WriteStorageFault(w)
			return
		}
		results = append(results, map[string]interface{}{
			"supplier_name": name,
			"city":          city,
		})
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Error("Supplier report failed")
		httputil.WriteStorageFault(w)
		return
	}
	httputil.WriteSuccess(w, results)
}
