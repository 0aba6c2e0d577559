package service

import (
	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/mylogger"
)

var sidebarItems = []dto.NavItem{
	{Href: "/admin/settings", Icon: "settings", LabelKey: "common.storeSettings"},
	{Href: "/admin/products", Icon: "package", LabelKey: "common.productManagement"},
	{Href: "/admin/orders", Icon: "credit-card", LabelKey: "common.ordersRefunds"},
	{Href: "/admin/refunds", Icon: "rotate-ccw", LabelKey: "common.refundRequests"},
	{Href: "/admin/categories", Icon: "tags", LabelKey: "common.categoriesManage"},
	{Href: "/admin/users", Icon: "users", LabelKey: "common.customers"},
	{Href: "/admin/reviews", Icon: "star", LabelKey: "common.reviews"},
	{Href: "/admin/announcement", Icon: "megaphone", LabelKey: "announcement.title"},
	{Href: "/admin/data", Icon: "download", LabelKey: "common.dataExport"},
	{Href: "/admin/collect", Icon: "qr-code", LabelKey: "payment.adminMenu"},
	{Href: "/admin/notifications", Icon: "bell", LabelKey: "admin.settings.notifications.title"},
}

type NavigationService struct {
	mylog mylogger.Logger
	guard ports.IAccessGuard
}

func NewNavigationService(mylog mylogger.Logger, guard ports.IAccessGuard) *NavigationService {
	return &NavigationService{
		mylog: mylog,
		guard: guard,
	}
}

func (ns *NavigationService) Sidebar(caller models.Caller) (dto.Sidebar, error) {
	if err := ns.guard.CheckAdmin(caller); err != nil {
		ns.mylog.Action("sidebar").Warn("access denied", "user_id", caller.UserId)
		return dto.Sidebar{}, err
	}

	items := make([]dto.NavItem, len(sidebarItems))
	copy(items, sidebarItems)

	return dto.Sidebar{
		TitleKey:   "common.adminTitle",
		Items:      items,
		LoggedInAs: caller.DisplayName(),
		Logout:     dto.LogoutAction{CallbackURL: "/"},
	}, nil
}
