package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"careermate/internal/conversation"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(
		&conversation.Conversation{},
		&conversation.Message{},
		&conversation.AskJob{},
	); err != nil {
		return nil, err
	}
	return gdb, nil
}
