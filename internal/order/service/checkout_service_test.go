package service

import (
	"context"
	"testing"

	cartDomain "github.com/ridloal/pc-store-commerce/internal/cart/domain"
	cartMocks "github.com/ridloal/pc-store-commerce/internal/cart/repository/mocks"
	compatDomain "github.com/ridloal/pc-store-commerce/internal/compat/domain"
	compatSvc "github.com/ridloal/pc-store-commerce/internal/compat/service"
	compatSvcMocks "github.com/ridloal/pc-store-commerce/internal/compat/service/mocks"
	inventorySvc "github.com/ridloal/pc-store-commerce/internal/inventory/service"
	inventorySvcMocks "github.com/ridloal/pc-store-commerce/internal/inventory/service/mocks"
	"github.com/ridloal/pc-store-commerce/internal/order/domain"
	"github.com/ridloal/pc-store-commerce/internal/order/repository/mocks"
	svcMocks "github.com/ridloal/pc-store-commerce/internal/order/service/mocks"
	dbMocks "github.com/ridloal/pc-store-commerce/internal/platform/database/mocks"
	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
	productMocks "github.com/ridloal/pc-store-commerce/internal/product/repository/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type checkoutFixture struct {
	orderRepo    *mocks.MockOrderRepository
	cartRepo     *cartMocks.MockCartRepository
	productRepo  *productMocks.MockProductRepository
	inventorySvc *inventorySvcMocks.MockInventoryService
	compatSvc    *compatSvcMocks.MockCompatService
	notifier     *svcMocks.MockNotifier
	tx           *dbMocks.MockDBTX
	svc          CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		orderRepo:    new(mocks.MockOrderRepository),
		cartRepo:     new(cartMocks.MockCartRepository),
		productRepo:  new(productMocks.MockProductRepository),
		inventorySvc: new(inventorySvcMocks.MockInventoryService),
		compatSvc:    new(compatSvcMocks.MockCompatService),
		notifier:     new(svcMocks.MockNotifier),
		tx:           new(dbMocks.MockDBTX),
	}
	f.svc = NewCheckoutService(f.orderRepo, f.cartRepo, f.productRepo, f.inventorySvc, f.compatSvc,
		f.notifier, decimal.NewFromInt(150000))
	return f
}

func (f *checkoutFixture) expectTxWithSavepoint(ctx context.Context) {
	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil).Once()
	f.tx.On("ExecContext", ctx, "SAVEPOINT invoice_insert").Return(nil, nil).Maybe()
	f.tx.On("Rollback").Return(nil).Maybe()
}

func readyProduct(id, name string, stock int, price int64) *product.Product {
	return &product.Product{
		ID: id, Name: name, Stock: stock, StockStatus: product.StockReady,
		IsActive: true, Price: decimal.NewFromInt(price),
	}
}

func TestCheckoutService_CheckoutProduct(t *testing.T) {
	ctx := context.TODO()

	t.Run("kirim without address fails before any transaction", func(t *testing.T) {
		f := newCheckoutFixture()
		_, err := f.svc.CheckoutProduct(ctx, "user-1", domain.CheckoutProductRequest{
			CartItemIDs: []string{"ci1"}, PickupMethod: "kirim", PaymentMethodID: "pm1",
		})
		assert.ErrorIs(t, err, ErrShippingAddressRequired)
		f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("successful checkout commits order, decrement and cart clear together", func(t *testing.T) {
		f := newCheckoutFixture()
		f.expectTxWithSavepoint(ctx)

		cartItems := []cartDomain.CartItem{{ID: "ci1", UserID: "user-1", ProductID: "p1", Quantity: 2}}
		p := readyProduct("p1", "SSD 1TB", 5, 1500000)

		f.cartRepo.On("GetItemsForCheckout", ctx, f.tx, "user-1", []string{"ci1"}).Return(cartItems, nil).Once()
		f.productRepo.On("GetForUpdate", ctx, f.tx, "p1").Return(p, nil).Once()
		f.orderRepo.On("InsertOrder", ctx, f.tx, mock.MatchedBy(func(o *domain.Order) bool {
			return o.OrderType == domain.TypeProduct &&
				o.OrderStatus == domain.StatusMenungguVerifikasi &&
				o.PaymentStatus == domain.PaymentBelumBayar &&
				o.TotalPrice.Equal(decimal.NewFromInt(3000000)) &&
				o.InvoiceNumber != ""
		})).Return(nil).Once()
		f.orderRepo.On("InsertOrderItems", ctx, f.tx, "mock-order-id", mock.MatchedBy(func(items []domain.OrderItem) bool {
			return len(items) == 1 && items[0].Subtotal.Equal(decimal.NewFromInt(3000000))
		})).Return(nil).Once()
		f.orderRepo.On("InsertDelivery", ctx, f.tx, mock.MatchedBy(func(d *domain.OrderDelivery) bool {
			return d.OrderID == "mock-order-id" && d.ShippingCost.IsZero()
		})).Return(nil).Once()
		f.inventorySvc.On("DecrementForCheckout", ctx, f.tx, p, 2, mock.AnythingOfType("string"), "user-1").Return(nil).Once()
		f.cartRepo.On("DeleteItems", ctx, f.tx, []string{"ci1"}).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyAdmins", ctx, "mock-order-id", mock.AnythingOfType("string")).Once()

		order, err := f.svc.CheckoutProduct(ctx, "user-1", domain.CheckoutProductRequest{
			CartItemIDs: []string{"ci1"}, PickupMethod: "ambil", PaymentMethodID: "pm1",
		})
		assert.NoError(t, err)
		assert.Equal(t, "mock-order-id", order.ID)
		f.orderRepo.AssertExpectations(t)
		f.inventorySvc.AssertExpectations(t)
		f.cartRepo.AssertExpectations(t)
	})

	t.Run("insufficient ready stock aborts before any insert", func(t *testing.T) {
		f := newCheckoutFixture()
		f.expectTxWithSavepoint(ctx)

		cartItems := []cartDomain.CartItem{{ID: "ci1", UserID: "user-1", ProductID: "p1", Quantity: 10}}
		p := readyProduct("p1", "SSD 1TB", 3, 1500000)

		f.cartRepo.On("GetItemsForCheckout", ctx, f.tx, "user-1", []string{"ci1"}).Return(cartItems, nil).Once()
		f.productRepo.On("GetForUpdate", ctx, f.tx, "p1").Return(p, nil).Once()

		_, err := f.svc.CheckoutProduct(ctx, "user-1", domain.CheckoutProductRequest{
			CartItemIDs: []string{"ci1"}, PickupMethod: "ambil", PaymentMethodID: "pm1",
		})
		assert.ErrorIs(t, err, inventorySvc.ErrInsufficientStock)
		f.orderRepo.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything, mock.Anything)
		f.inventorySvc.AssertNotCalled(t, "DecrementForCheckout",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("inactive product rejected", func(t *testing.T) {
		f := newCheckoutFixture()
		f.expectTxWithSavepoint(ctx)

		cartItems := []cartDomain.CartItem{{ID: "ci1", UserID: "user-1", ProductID: "p1", Quantity: 1}}
		p := readyProduct("p1", "SSD 1TB", 3, 1500000)
		p.IsActive = false

		f.cartRepo.On("GetItemsForCheckout", ctx, f.tx, "user-1", []string{"ci1"}).Return(cartItems, nil).Once()
		f.productRepo.On("GetForUpdate", ctx, f.tx, "p1").Return(p, nil).Once()

		_, err := f.svc.CheckoutProduct(ctx, "user-1", domain.CheckoutProductRequest{
			CartItemIDs: []string{"ci1"}, PickupMethod: "ambil", PaymentMethodID: "pm1",
		})
		assert.ErrorIs(t, err, ErrProductInactive)
	})

	t.Run("missing cart rows rejected", func(t *testing.T) {
		f := newCheckoutFixture()
		f.expectTxWithSavepoint(ctx)

		f.cartRepo.On("GetItemsForCheckout", ctx, f.tx, "user-1", []string{"ci1", "ci2"}).
			Return([]cartDomain.CartItem{{ID: "ci1", ProductID: "p1", Quantity: 1}}, nil).Once()

		_, err := f.svc.CheckoutProduct(ctx, "user-1", domain.CheckoutProductRequest{
			CartItemIDs: []string{"ci1", "ci2"}, PickupMethod: "ambil", PaymentMethodID: "pm1",
		})
		assert.ErrorIs(t, err, ErrCartItemsNotFound)
	})

	t.Run("pre-order item is never decremented", func(t *testing.T) {
		f := newCheckoutFixture()
		f.expectTxWithSavepoint(ctx)

		cartItems := []cartDomain.CartItem{{ID: "ci1", UserID: "user-1", ProductID: "p1", Quantity: 4}}
		p := &product.Product{
			ID: "p1", Name: "GPU Baru", Stock: 0, StockStatus: product.StockPreOrder,
			IsActive: true, Price: decimal.NewFromInt(9000000),
		}

		f.cartRepo.On("GetItemsForCheckout", ctx, f.tx, "user-1", []string{"ci1"}).Return(cartItems, nil).Once()
		f.productRepo.On("GetForUpdate", ctx, f.tx, "p1").Return(p, nil).Once()
		f.orderRepo.On("InsertOrder", ctx, f.tx, mock.Anything).Return(nil).Once()
		f.orderRepo.On("InsertOrderItems", ctx, f.tx, "mock-order-id", mock.Anything).Return(nil).Once()
		f.orderRepo.On("InsertDelivery", ctx, f.tx, mock.Anything).Return(nil).Once()
		f.cartRepo.On("DeleteItems", ctx, f.tx, []string{"ci1"}).Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyAdmins", ctx, "mock-order-id", mock.AnythingOfType("string")).Once()

		_, err := f.svc.CheckoutProduct(ctx, "user-1", domain.CheckoutProductRequest{
			CartItemIDs: []string{"ci1"}, PickupMethod: "ambil", PaymentMethodID: "pm1",
		})
		assert.NoError(t, err)
		f.inventorySvc.AssertNotCalled(t, "DecrementForCheckout",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCheckoutService_CheckoutBuild(t *testing.T) {
	ctx := context.TODO()

	buildReq := domain.CheckoutBuildRequest{
		Components: []domain.BuildComponentRequest{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 1},
		},
		BuildByStore: true, PickupMethod: "ambil", PaymentMethodID: "pm1",
	}

	t.Run("invalid build rolls back with zero rows written", func(t *testing.T) {
		f := newCheckoutFixture()
		f.expectTxWithSavepoint(ctx)

		p1 := readyProduct("p1", "CPU tanpa iGPU", 5, 3000000)
		p2 := readyProduct("p2", "Mobo X", 5, 2000000)
		p1.Category, p2.Category = product.ComponentCategory, product.ComponentCategory

		f.productRepo.On("GetForUpdate", ctx, f.tx, "p1").Return(p1, nil).Once()
		f.productRepo.On("GetForUpdate", ctx, f.tx, "p2").Return(p2, nil).Once()
		f.compatSvc.On("ValidateBuild", ctx, mock.Anything).Return(compatSvc.ErrGpuRequired).Once()

		_, err := f.svc.CheckoutBuild(ctx, "user-1", buildReq)
		assert.ErrorIs(t, err, compatSvc.ErrGpuRequired)
		f.orderRepo.AssertNotCalled(t, "InsertOrder", mock.Anything, mock.Anything, mock.Anything)
		f.tx.AssertNotCalled(t, "Commit")
	})

	t.Run("successful build adds build fee and writes components", func(t *testing.T) {
		f := newCheckoutFixture()
		f.expectTxWithSavepoint(ctx)

		p1 := readyProduct("p1", "CPU Y", 5, 3000000)
		p2 := readyProduct("p2", "Mobo X", 5, 2000000)
		p1.Category, p2.Category = product.ComponentCategory, product.ComponentCategory
		p1.Subcategory, p2.Subcategory = "processor", "motherboard"

		f.productRepo.On("GetForUpdate", ctx, f.tx, "p1").Return(p1, nil).Once()
		f.productRepo.On("GetForUpdate", ctx, f.tx, "p2").Return(p2, nil).Once()
		f.compatSvc.On("ValidateBuild", ctx, mock.Anything).Return(nil).Once()
		f.orderRepo.On("InsertOrder", ctx, f.tx, mock.MatchedBy(func(o *domain.Order) bool {
			// 3jt + 2jt + 150rb build fee.
			return o.OrderType == domain.TypeCustomPC && o.TotalPrice.Equal(decimal.NewFromInt(5150000))
		})).Return(nil).Once()
		f.orderRepo.On("InsertCustomPCDetail", ctx, f.tx, mock.MatchedBy(func(d *domain.CustomPCDetail) bool {
			return d.BuildByStore && d.BuildFee.Equal(decimal.NewFromInt(150000))
		})).Return(nil).Once()
		f.orderRepo.On("InsertCustomPCComponents", ctx, f.tx, "mock-order-id", mock.MatchedBy(func(cs []domain.CustomPCComponent) bool {
			return len(cs) == 2
		})).Return(nil).Once()
		f.orderRepo.On("InsertDelivery", ctx, f.tx, mock.Anything).Return(nil).Once()
		f.inventorySvc.On("DecrementForCheckout", ctx, f.tx, p1, 1, mock.AnythingOfType("string"), "user-1").Return(nil).Once()
		f.inventorySvc.On("DecrementForCheckout", ctx, f.tx, p2, 1, mock.AnythingOfType("string"), "user-1").Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyAdmins", ctx, "mock-order-id", mock.AnythingOfType("string")).Once()

		order, err := f.svc.CheckoutBuild(ctx, "user-1", buildReq)
		assert.NoError(t, err)
		assert.Equal(t, domain.TypeCustomPC, order.OrderType)
		f.orderRepo.AssertExpectations(t)
		f.inventorySvc.AssertExpectations(t)
	})

	t.Run("duplicate component entries merge into a single line", func(t *testing.T) {
		f := newCheckoutFixture()
		f.expectTxWithSavepoint(ctx)

		p1 := readyProduct("p1", "RAM 16GB", 5, 500000)
		p1.Category = product.ComponentCategory
		p1.Subcategory = "ram"

		// Produk yang sama disebut dua kali: satu kunci, satu baris,
		// total 2 x 500rb, bukan dua baris qty 2.
		req := domain.CheckoutBuildRequest{
			Components: []domain.BuildComponentRequest{
				{ProductID: "p1", Quantity: 1},
				{ProductID: "p1", Quantity: 1},
			},
			PickupMethod: "ambil", PaymentMethodID: "pm1",
		}

		f.productRepo.On("GetForUpdate", ctx, f.tx, "p1").Return(p1, nil).Once()
		f.compatSvc.On("ValidateBuild", ctx, mock.MatchedBy(func(cs []compatDomain.BuildComponent) bool {
			return len(cs) == 1 && cs[0].Quantity == 2
		})).Return(nil).Once()
		f.orderRepo.On("InsertOrder", ctx, f.tx, mock.MatchedBy(func(o *domain.Order) bool {
			return o.TotalPrice.Equal(decimal.NewFromInt(1000000))
		})).Return(nil).Once()
		f.orderRepo.On("InsertCustomPCDetail", ctx, f.tx, mock.Anything).Return(nil).Once()
		f.orderRepo.On("InsertCustomPCComponents", ctx, f.tx, "mock-order-id", mock.MatchedBy(func(cs []domain.CustomPCComponent) bool {
			return len(cs) == 1 && cs[0].Quantity == 2 && cs[0].Subtotal.Equal(decimal.NewFromInt(1000000))
		})).Return(nil).Once()
		f.orderRepo.On("InsertDelivery", ctx, f.tx, mock.Anything).Return(nil).Once()
		f.inventorySvc.On("DecrementForCheckout", ctx, f.tx, p1, 2, mock.AnythingOfType("string"), "user-1").Return(nil).Once()
		f.tx.On("Commit").Return(nil).Once()
		f.notifier.On("NotifyAdmins", ctx, "mock-order-id", mock.AnythingOfType("string")).Once()

		_, err := f.svc.CheckoutBuild(ctx, "user-1", req)
		assert.NoError(t, err)
		f.orderRepo.AssertExpectations(t)
		f.inventorySvc.AssertNumberOfCalls(t, "DecrementForCheckout", 1)
	})
}
