package api

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesByStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("Completed").
		WillReturnRows(sqlmock.NewRows(
			[]string{"status", "total_orders", "total_revenue"}).
			AddRow("Completed", 3, 149.97))

	rec := ts.request(t, http.MethodPost, "/api/reports/sales-by-status",
		`{"status":"Completed"}`, &supplierS1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_orders":3`)
}

func TestSalesByStatusRequiresStatus(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(t, http.MethodPost, "/api/reports/sales-by-status", `{}`, &supplierS1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAveragePriceByCategory(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.ExpectQuery("SELECT (.+) FROM product").
		WithArgs("tools").
		WillReturnRows(sqlmock.NewRows(
			[]string{"category", "product_count", "average_price"}).
			AddRow("tools", 2, 14.99))

	rec := ts.request(t, http.MethodPost, "/api/reports/average-price-by-category",
		`{"category":"tools"}`, &adminID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"average_price":14.99`)
}

func TestOrdersByCity(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("Oslo").
		WillReturnRows(sqlmock.NewRows(
			[]string{"order_id", "total_amount", "customer_name", "city"}).
			AddRow("O1", 49.99, "Bob", "Oslo"))

	rec := ts.request(t, http.MethodPost, "/api/reports/orders-by-city",
		`{"city":"Oslo"}`, &adminID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"customer_name":"Bob"`)
}

func TestSuppliersAbovePrice(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.ExpectQuery("SELECT (.+) FROM supplier").
		WithArgs(100.0).
		WillReturnRows(sqlmock.NewRows(
			[]string{"supplier_name", "city"}).
			AddRow("Alice Supplies", "Oslo"))

	rec := ts.request(t, http.MethodPost, "/api/reports/suppliers-above-price",
		`{"min_price":100}`, &adminID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"supplier_name":"Alice Supplies"`)
}

func TestReportsEmptyResultIsArray(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.ExpectQuery("SELECT (.+) FROM product").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(
			[]string{"category", "product_count", "average_price"}))

	rec := ts.request(t, http.MethodPost, "/api/reports/average-price-by-category",
		`{"category":"nope"}`, &adminID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
