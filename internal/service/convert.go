package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/onecard/internal/allocation"
	"github.com/mmynk/onecard/internal/models"
	"github.com/mmynk/onecard/pkg/api"
)

func userToAPI(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Phone:       u.Phone,
		CreatedAt:   u.CreatedAt,
	}
}

func splitToAPI(r allocation.Result) *api.Split {
	return &api.Split{
		CustomerReward: r.CustomerReward,
		VendorProfit:   r.VendorProfit,
		AdminFee:       r.AdminFee,
		TotalAmount:    r.TotalAmount,
	}
}

func allocationToAPI(a *models.Allocation) *api.Allocation {
	return &api.Allocation{
		ID:              a.ID,
		Reference:       a.Reference,
		Table:           a.Table,
		PurchaserID:     a.PurchaserID,
		Role:            string(a.Role),
		Mode:            string(a.Mode),
		RecipientMSISDN: a.RecipientMSISDN,
		CustomerID:      a.CustomerID,
		VendorID:        a.VendorID,
		DealID:          a.DealID,
		Amount:          a.Amount,
		CustomerReward:  a.CustomerReward,
		VendorProfit:    a.VendorProfit,
		AdminFee:        a.AdminFee,
		CreatedAt:       a.CreatedAt,
	}
}

func walletToAPI(w *models.Wallet) *api.Wallet {
	return &api.Wallet{
		OwnerID:   w.OwnerID,
		Role:      string(w.Role),
		Balance:   w.Balance,
		UpdatedAt: w.UpdatedAt,
	}
}

func dealToAPI(d *models.Deal, markupRate decimal.Decimal) *api.Deal {
	return &api.Deal{
		ID:             d.ID,
		VendorID:       d.VendorID,
		Network:        d.Network,
		Title:          d.Title,
		WholesalePrice: d.WholesalePrice,
		Price:          d.Price(markupRate),
		Active:         d.Active,
		CreatedAt:      d.CreatedAt,
	}
}
