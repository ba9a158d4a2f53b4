package main

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dailyroutine/internal/config"
	"github.com/dailyroutine/internal/db"
)

// Seeds a demo dataset: one admin, two parents, three students and a
// routine for today. Intended for local development only.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	var count int64
	db.DB.Model(&db.User{}).Count(&count)
	if count > 0 {
		fmt.Println("users already exist, skipping seed")
		return
	}

	fmt.Println("seeding demo data...")

	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash password: ", err)
	}

	admin := db.User{Username: "admin", Password: string(hashed), Email: "admin@example.com", Role: db.RoleAdmin}
	parent1 := db.User{Username: "parent1", Password: string(hashed), Email: "parent1@example.com", Role: db.RoleParent}
	parent2 := db.User{Username: "parent2", Password: string(hashed), Email: "parent2@example.com", Role: db.RoleParent}

	for _, user := range []*db.User{&admin, &parent1, &parent2} {
		if err := db.DB.Create(user).Error; err != nil {
			log.Fatal("failed to create user: ", err)
		}
	}

	students := []db.Student{
		{Name: "John Doe", ClassGrade: "Grade 5", ParentID: parent1.ID},
		{Name: "Jane Smith", ClassGrade: "Grade 3", ParentID: parent1.ID},
		{Name: "Mike Johnson", ClassGrade: "Grade 4", ParentID: parent2.ID},
	}
	for i := range students {
		if err := db.DB.Create(&students[i]).Error; err != nil {
			log.Fatal("failed to create student: ", err)
		}
	}

	today := time.Now()
	wakeUp := "07:00"
	sleep := "21:30"
	behavior := db.BehaviorGood
	createdBy := parent1.ID
	routine := db.Routine{
		StudentID:      students[0].ID,
		RoutineDate:    time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
		WakeUpTime:     &wakeUp,
		SleepTime:      &sleep,
		BehaviorAtHome: &behavior,
		CreatedByID:    &createdBy,
	}
	if err := db.DB.Create(&routine).Error; err != nil {
		log.Fatal("failed to create routine: ", err)
	}

	fmt.Println("demo data ready")
	fmt.Println("accounts: admin / parent1 / parent2 (password: password)")
	fmt.Println("students: John Doe, Jane Smith, Mike Johnson")
}
