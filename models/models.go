package models

import (
	"time"

	_ "github.com/lib/pq"
)

type User struct {
	ID          int       `json:"id" example:"1"`
	EmployeeId  string    `json:"employee_id" example:"EMP001"`
	Email       string    `json:"email" example:"user@example.com"`
	Password    string    `json:"password" example:""`
	FirstName   string    `json:"first_name" example:"Maria"`
	LastName    string    `json:"last_name" example:"Silva"`
	CreatedAt   time.Time `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at" example:"2026-01-15T10:30:00Z"`
	FirstAccess time.Time `json:"first_access,omitempty" example:"2026-01-15T10:30:00Z"`
	LastAccess  time.Time `json:"last_access,omitempty" example:"2026-01-15T10:30:00Z"`
	IsAdmin     bool      `json:"is_admin" example:"false"`
	PhoneNo     string    `json:"phone_no" example:"11987654321"`
	RoleID      int       `json:"role_id" example:"1"`
	RoleName    string    `json:"role_name" example:"Buyer"`
	Suspended   bool      `json:"suspended" example:"false"`
}

type Session struct {
	UserID                int       `json:"user_id" example:"1"`
	SessionID             string    `json:"session_id" example:""`
	HostName              string    `json:"host_name" example:"buyer-laptop"`
	IPAddress             string    `json:"ip_address" example:"10.0.0.5"`
	Timestamp             time.Time `json:"timestp" example:"2026-01-15T10:30:00Z"`
	ExpiresAt             time.Time `json:"expires_at" example:"2026-01-16T10:30:00Z"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty"`
}

type ActivityLog struct {
	ID                int       `json:"id" example:"1"`
	CreatedAt         time.Time `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UserName          string    `json:"user_name" example:"Maria Silva"`
	HostName          string    `json:"host_name" example:"buyer-laptop"`
	EventContext      string    `json:"event_context" example:"Quotation"`
	IPAddress         string    `json:"ip_address" example:"10.0.0.5"`
	Description       string    `json:"description" example:"Create Quotation"`
	EventName         string    `json:"event_name" example:"Create"`
	AffectedUserName  string    `json:"affected_user_name,omitempty"`
	AffectedUserEmail string    `json:"affected_user_email,omitempty"`
	QuotationID       int       `json:"quotation_id,omitempty" example:"1"`
}

// Supplier represents the suppliers table.
type Supplier struct {
	SupplierID int       `json:"supplier_id" example:"3"`
	Name       string    `json:"name" example:"Distribuidora Santa Cruz"`
	Email      string    `json:"email" example:"vendas@santacruz.com.br"`
	Phone      string    `json:"phone" example:"1133334444"`
	Address    string    `json:"address" example:"Av. Central 100"`
	CNPJ       string    `json:"cnpj" example:"12.345.678/0001-90"`
	Status     string    `json:"status" example:"active"`
	CreatedAt  time.Time `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt  time.Time `json:"updated_at" example:"2026-01-15T10:30:00Z"`
	CreatedBy  string    `json:"created_by" example:"admin"`
	UpdatedBy  string    `json:"updated_by" example:"admin"`
}

// Product represents the products catalog table.
type Product struct {
	ProductID   int       `json:"product_id" example:"10"`
	Name        string    `json:"name" example:"Dipirona 500mg"`
	Description string    `json:"description,omitempty" example:"Caixa com 20 comprimidos"`
	Barcode     string    `json:"barcode,omitempty" example:"7891234567890"`
	Unit        string    `json:"unit" example:"CX"`
	Active      bool      `json:"active" example:"true"`
	CreatedAt   time.Time `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// PharmacyStore represents the pharmacy_stores table that feeds the store set.
type PharmacyStore struct {
	ID       int    `json:"id" example:"1"`
	Code     string `json:"code" example:"JR"`
	Name     string `json:"name" example:"Farmacia JR"`
	Position int    `json:"position" example:"1"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:""`
	IP       string `json:"ip" binding:"required" example:"10.0.0.5"`
}

type LoginResponse struct {
	Message      string `json:"message" example:"Login successful"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
}
