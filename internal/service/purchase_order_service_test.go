package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

type orderTestEnv struct {
	store   *fakeStore
	service PurchaseOrderService
}

func newOrderTestEnv() *orderTestEnv {
	store := newFakeStore()
	return &orderTestEnv{
		store: store,
		service: NewPurchaseOrderService(
			&fakeOrderRepo{store: store},
			&fakeItemRepo{store: store},
			&fakeSupplierRepo{store: store},
			fakeTxManager{},
			newTestEmitter(store),
		),
	}
}

func (env *orderTestEnv) createOrder(t *testing.T, actor Actor, items []OrderItemPayload) OrderResponse {
	t.Helper()
	supplier := env.store.addSupplier("Office Depot")
	created, err := env.service.Create(context.Background(), actor, CreateOrderDTO{
		SupplierID: supplier.ID.String(),
		Items:      items,
	})
	require.NoError(t, err)
	return created
}

func TestReceivePersistsReceivedQuantitiesAndStock(t *testing.T) {
	env := newOrderTestEnv()
	manager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	actor := actorFor(manager, access.RoleManager)

	paper := env.store.addCatalogItem("paper", 4.5, 10)
	toner := env.store.addCatalogItem("toner", 60, 2)

	created := env.createOrder(t, actor, []OrderItemPayload{
		{ItemID: paper.ID.String(), Quantity: 20, UnitPrice: 4.5},
		{ItemID: toner.ID.String(), Quantity: 3, UnitPrice: 60},
	})
	assert.Equal(t, model.OrderStatusDraft, created.Status)

	_, err := env.service.Send(context.Background(), actor, created.ID)
	require.NoError(t, err)

	received, err := env.service.Receive(context.Background(), actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusReceived, received.Status)
	require.NotNil(t, received.ReceivedDate)

	// Received quantities must survive the reload, not just the in-memory
	// copy inside the transaction.
	require.Len(t, received.Items, 2)
	for _, line := range received.Items {
		assert.Equal(t, line.Quantity, line.ReceivedQuantity, line.ItemName)
	}

	assert.Equal(t, 30, paper.CurrentStock)
	assert.Equal(t, 5, toner.CurrentStock)

	// One inbound movement per line, referencing the order number.
	require.Len(t, env.store.movements, 2)
	for _, m := range env.store.movements {
		assert.Equal(t, model.MovementInbound, m.Type)
		assert.Equal(t, received.OrderNumber, m.Reference)
	}
}

func TestReceiveRejectedForWrongStatus(t *testing.T) {
	env := newOrderTestEnv()
	manager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	actor := actorFor(manager, access.RoleManager)

	paper := env.store.addCatalogItem("paper", 4.5, 10)
	created := env.createOrder(t, actor, []OrderItemPayload{
		{ItemID: paper.ID.String(), Quantity: 5, UnitPrice: 4.5},
	})

	// Still a draft: nothing has been placed with the supplier.
	_, err := env.service.Receive(context.Background(), actor, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindAlreadyFinalized, apperror.KindOf(err))
	assert.Equal(t, 10, paper.CurrentStock)
	assert.Empty(t, env.store.movements)
}

func TestReceiveAfterApprove(t *testing.T) {
	env := newOrderTestEnv()
	manager := env.store.addUser("maria", access.RoleManager.String(), "IT")
	actor := actorFor(manager, access.RoleManager)

	paper := env.store.addCatalogItem("paper", 4.5, 0)
	created := env.createOrder(t, actor, []OrderItemPayload{
		{ItemID: paper.ID.String(), Quantity: 8, UnitPrice: 4.5},
	})

	_, err := env.service.Approve(context.Background(), actor, created.ID)
	require.NoError(t, err)

	received, err := env.service.Receive(context.Background(), actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusReceived, received.Status)
	require.Len(t, received.Items, 1)
	assert.Equal(t, 8, received.Items[0].ReceivedQuantity)
	assert.Equal(t, 8, paper.CurrentStock)
}
