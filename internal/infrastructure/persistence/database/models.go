package database

import (
	"time"
)

// UserModel 用户表
type UserModel struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:100;not null"`
	Password  string    `gorm:"size:255;not null"`
	Role      string    `gorm:"size:20;not null;default:member"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}

// BookModel 图书表，copies为在架库存
type BookModel struct {
	ID            uint      `gorm:"primaryKey"`
	Title         string    `gorm:"index;size:255;not null"`
	Author        string    `gorm:"index;size:255;not null"`
	ISBN          *string   `gorm:"column:isbn;uniqueIndex;size:20"`
	PublishedYear *int      `gorm:"column:published_year"`
	Genre         *string   `gorm:"index;size:100"`
	Copies        int       `gorm:"not null;check:chk_books_copies,copies >= 0"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (BookModel) TableName() string {
	return "books"
}

// TransactionModel 借阅记录表，删除用户或图书时级联删除
type TransactionModel struct {
	ID           uint       `gorm:"primaryKey"`
	UserID       uint       `gorm:"index;not null"`
	BookID       uint       `gorm:"index;not null"`
	CheckoutDate time.Time  `gorm:"index;not null"`
	DueDate      time.Time  `gorm:"index;not null"`
	ReturnDate   *time.Time `gorm:"index"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`

	User UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Book BookModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}
