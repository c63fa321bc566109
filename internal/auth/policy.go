package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Operation adalah nama operasi inti yang dijaga role-nya.
// Satu tabel kebijakan, bukan cek role yang tersebar di tiap handler.
type Operation string

const (
	OpStockEntryCreate Operation = "stock_entry.create"
	OpStockEntryDelete Operation = "stock_entry.delete"
	OpStockEntryList   Operation = "stock_entry.list"

	OpCompatibilityAdd    Operation = "compatibility.add"
	OpCompatibilityRemove Operation = "compatibility.remove"
	OpCompatibilityList   Operation = "compatibility.list"

	OpCartManage       Operation = "cart.manage"
	OpCheckoutProduct  Operation = "checkout.product"
	OpCheckoutBuild    Operation = "checkout.custom_pc"
	OpOrderApprove     Operation = "order.approve"
	OpOrderApproveAll  Operation = "order.approve_all"
	OpOrderCancel      Operation = "order.cancel"
	OpOrderShip        Operation = "order.ship"
	OpOrderFinish      Operation = "order.finish"
	OpOrderReceive     Operation = "order.receive"
	OpOrderView        Operation = "order.view"
	OpOrderListAll     Operation = "order.list_all"
	OpOrderNoteAdd     Operation = "order.note_add"
	OpPaymentSubmit    Operation = "payment.submit"
	OpPaymentUpdate    Operation = "payment.update"
	OpPaymentVerify    Operation = "payment.verify"
	OpNotificationRead Operation = "notification.read"
)

var policy = map[Operation][]string{
	OpStockEntryCreate: {RoleAdmin, RoleSuperadmin},
	OpStockEntryDelete: {RoleAdmin, RoleSuperadmin},
	OpStockEntryList:   {RoleAdmin, RoleSuperadmin},

	OpCompatibilityAdd:    {RoleAdmin, RoleSuperadmin},
	OpCompatibilityRemove: {RoleAdmin, RoleSuperadmin},
	OpCompatibilityList:   {RoleCustomer, RoleAdmin, RoleSuperadmin},

	OpCartManage:      {RoleCustomer},
	OpCheckoutProduct: {RoleCustomer},
	OpCheckoutBuild:   {RoleCustomer},

	OpOrderApprove:    {RoleAdmin, RoleSuperadmin},
	OpOrderApproveAll: {RoleAdmin, RoleSuperadmin},
	OpOrderCancel:     {RoleCustomer},
	OpOrderShip:       {RoleAdmin, RoleSuperadmin},
	OpOrderFinish:     {RoleAdmin, RoleSuperadmin},
	OpOrderReceive:    {RoleCustomer},
	OpOrderView:       {RoleCustomer, RoleAdmin, RoleSuperadmin},
	OpOrderListAll:    {RoleAdmin, RoleSuperadmin},
	OpOrderNoteAdd:    {RoleCustomer, RoleAdmin, RoleSuperadmin},

	OpPaymentSubmit: {RoleCustomer},
	OpPaymentUpdate: {RoleCustomer},
	OpPaymentVerify: {RoleAdmin, RoleSuperadmin},

	OpNotificationRead: {RoleCustomer, RoleAdmin, RoleSuperadmin},
}

func Allowed(op Operation, role string) bool {
	for _, allowed := range policy[op] {
		if role == allowed {
			return true
		}
	}
	return false
}

// Require menolak request dengan 403 jika role pada Identity
// tidak terdaftar untuk operasi tersebut.
func Require(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := IdentityFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !Allowed(op, identity.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role is not permitted for this operation"})
			return
		}
		c.Next()
	}
}
