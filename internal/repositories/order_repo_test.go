package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"bakeshop/internal/models"
)

type OrderRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    OrderRepository
	orderID uuid.UUID
	userID  uuid.UUID
	context context.Context
}

func (suite *OrderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOrderRepo(mock)
	suite.orderID = uuid.New()
	suite.userID = uuid.New()
	suite.context = context.Background()
}

func (suite *OrderRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func (suite *OrderRepoTestSuite) newOrder() *models.Order {
	return &models.Order{
		ID:               suite.orderID,
		DueDate:          time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		DueTime:          "16:00",
		PickupLocationID: uuid.New(),
		CustomerName:     "Jane Smith",
		CustomerPhone:    "+1 555 0100",
		Status:           models.OrderStatusNew,
		TotalCents:       4300,
		CreatedBy:        suite.userID,
		Items: []*models.OrderItem{
			{ID: uuid.New(), OrderID: suite.orderID, ProductID: uuid.New(), Quantity: 2},
		},
		History: []*models.OrderHistoryItem{
			{ID: uuid.New(), OrderID: suite.orderID, Status: models.OrderStatusNew,
				Message: "Order placed", CreatedBy: suite.userID},
		},
	}
}

func (suite *OrderRepoTestSuite) TestCreate_Success() {
	order := suite.newOrder()
	item := order.Items[0]
	history := order.History[0]

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.ID, order.DueDate, order.DueTime, order.PickupLocationID, order.CustomerName,
			order.CustomerPhone, order.CustomerDetails, order.Status, order.TotalCents,
			order.CreatedBy, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(item.ID, order.ID, item.ProductID, item.Quantity, item.Comment).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_history`).
		WithArgs(history.ID, order.ID, history.Status, history.Message, history.CreatedBy, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Create(suite.context, order)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestCreate_ItemInsertFails() {
	order := suite.newOrder()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.ID, order.DueDate, order.DueTime, order.PickupLocationID, order.CustomerName,
			order.CustomerPhone, order.CustomerDetails, order.Status, order.TotalCents,
			order.CreatedBy, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(order.Items[0].ID, order.ID, order.Items[0].ProductID,
			order.Items[0].Quantity, order.Items[0].Comment).
		WillReturnError(errors.New("insert failed"))
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.context, order)
	assert.Error(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestUpdateStatus_Success() {
	history := &models.OrderHistoryItem{
		ID:        uuid.New(),
		OrderID:   suite.orderID,
		Status:    models.OrderStatusConfirmed,
		Message:   "Order confirmed",
		CreatedBy: suite.userID,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE orders SET status = \$2`).
		WithArgs(suite.orderID, models.OrderStatusConfirmed, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO order_history`).
		WithArgs(history.ID, suite.orderID, history.Status, history.Message, history.CreatedBy, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.UpdateStatus(suite.context, suite.orderID, models.OrderStatusConfirmed, history)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *OrderRepoTestSuite) TestUpdateStatus_NotFound() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`UPDATE orders SET status = \$2`).
		WithArgs(suite.orderID, models.OrderStatusConfirmed, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	err := suite.repo.UpdateStatus(suite.context, suite.orderID, models.OrderStatusConfirmed, nil)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *OrderRepoTestSuite) TestCountDueOn_Success() {
	date := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE due_date = \$1`).
		WithArgs(date).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	count, err := suite.repo.CountDueOn(suite.context, date)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, count)
}

func (suite *OrderRepoTestSuite) TestCountDueOnWithStatusIn_Success() {
	date := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	statuses := []string{models.OrderStatusDelivered}

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE due_date = \$1 AND status = ANY\(\$2\)`).
		WithArgs(date, statuses).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := suite.repo.CountDueOnWithStatusIn(suite.context, date, statuses)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, count)
}

func (suite *OrderRepoTestSuite) TestCountOverdue_Success() {
	asOf := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE due_date < \$1`).
		WithArgs(asOf, []string{models.OrderStatusNew, models.OrderStatusConfirmed}).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := suite.repo.CountOverdue(suite.context, asOf)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, count)
}

func (suite *OrderRepoTestSuite) TestDeliveriesPerDay_SparseResult() {
	rows := pgxmock.NewRows([]string{"day", "count"}).
		AddRow(1, 5).
		AddRow(17, 2)

	suite.mock.ExpectQuery(`EXTRACT\(DAY FROM due_date\)`).
		WithArgs(models.OrderStatusDelivered, 8, 2026).
		WillReturnRows(rows)

	counts, err := suite.repo.DeliveriesPerDay(suite.context, 8, 2026)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), map[int]int{1: 5, 17: 2}, counts)
}

func (suite *OrderRepoTestSuite) TestSalesPerMonth_Success() {
	rows := pgxmock.NewRows([]string{"year", "month", "count"}).
		AddRow(2024, 12, 30).
		AddRow(2025, 6, 41).
		AddRow(2026, 1, 12)

	suite.mock.ExpectQuery(`EXTRACT\(YEAR FROM due_date\)`).
		WithArgs(models.OrderStatusDelivered, 2024, 2026).
		WillReturnRows(rows)

	counts, err := suite.repo.SalesPerMonth(suite.context, 2024, 2026)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), counts, 3)
	assert.Equal(suite.T(), MonthlyCount{Year: 2025, Month: 6, Count: 41}, counts[1])
}

func (suite *OrderRepoTestSuite) TestProductDeliveries_Success() {
	rows := pgxmock.NewRows([]string{"name", "quantity"}).
		AddRow("Strawberry Cake", 25).
		AddRow("Blueberry Muffin", 11)

	suite.mock.ExpectQuery(`FROM order_items oi`).
		WithArgs(models.OrderStatusDelivered, 8, 2026, 10).
		WillReturnRows(rows)

	deliveries, err := suite.repo.ProductDeliveries(suite.context, 8, 2026, 10)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), deliveries, 2)
	assert.Equal(suite.T(), "Strawberry Cake", deliveries[0].ProductName)
	assert.Equal(suite.T(), 25, deliveries[0].Quantity)
}
