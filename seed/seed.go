// Package seed loads the starter learning content on first boot
// (SEED_MODULES=true). Seeding is idempotent: it does nothing when modules
// already exist.
package seed

import (
	"log"

	"github.com/edu-safe/api-go/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Modules(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Module{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Modules already seeded, skipping")
		return nil
	}

	instructor, err := ensureInstructor(db)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, module := range starterModules(instructor.ID) {
			if err := tx.Create(&module).Error; err != nil {
				return err
			}
			quiz := starterQuiz(module.ID, instructor.ID, module.Title)
			if quiz != nil {
				if err := tx.Create(quiz).Error; err != nil {
					return err
				}
			}
		}
		log.Println("Seeded starter modules and quizzes")
		return nil
	})
}

func ensureInstructor(db *gorm.DB) (*models.User, error) {
	var instructor models.User
	if err := db.Where("email = ?", "instructor@edusafe.com").First(&instructor).Error; err == nil {
		return &instructor, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	instructor = models.User{
		Username: "instructor",
		Email:    "instructor@edusafe.com",
		Password: string(hash),
		Role:     models.RoleTeacher,
	}
	if err := db.Create(&instructor).Error; err != nil {
		return nil, err
	}
	return &instructor, nil
}

func starterModules(instructorID string) []models.Module {
	return []models.Module{
		{
			Title:          "Cyberbullying Awareness",
			Description:    "Learn about cyberbullying, its impact, and how to prevent it. This module covers identifying cyberbullying, supporting victims, and creating a positive online environment.",
			Difficulty:     "beginner",
			Duration:       "2-3 hours",
			EstimatedHours: 2.5,
			Category:       "Online Safety",
			Tags:           []string{"cyberbullying", "online safety", "digital citizenship"},
			InstructorID:   instructorID,
			IsPublished:    true,
			IsActive:       true,
			Lessons: []models.Lesson{
				{
					Title:         "Understanding Cyberbullying",
					Content:       "Cyberbullying is bullying that takes place over digital devices like cell phones, computers, and tablets. It can occur through SMS, text, and apps, or online in social media, forums, or gaming.",
					Type:          "text",
					Order:         1,
					EstimatedTime: 15,
				},
				{
					Title:         "Types of Cyberbullying",
					Content:       "Learn about different forms of cyberbullying including harassment, flaming, exclusion, outing, and cyberstalking.",
					Type:          "text",
					Order:         2,
					EstimatedTime: 20,
				},
				{
					Title:         "Impact of Cyberbullying",
					Content:       "Explore the psychological, emotional, and academic effects of cyberbullying on victims.",
					Type:          "video",
					VideoURL:      "https://www.youtube.com/watch?v=6ctd75a7_Yw",
					Order:         3,
					EstimatedTime: 25,
				},
			},
		},
		{
			Title:          "Campus Safety Basics",
			Description:    "Recognize common safety hazards around school grounds, know how to report them, and learn what happens after a report is filed.",
			Difficulty:     "beginner",
			Duration:       "1-2 hours",
			EstimatedHours: 1.5,
			Category:       "Physical Safety",
			Tags:           []string{"safety", "reporting", "awareness"},
			InstructorID:   instructorID,
			IsPublished:    true,
			IsActive:       true,
			Lessons: []models.Lesson{
				{
					Title:         "Spotting Hazards",
					Content:       "Broken equipment, blocked exits, and poor lighting are the most commonly reported infrastructure hazards. Learn to recognize them early.",
					Type:          "text",
					Order:         1,
					EstimatedTime: 10,
				},
				{
					Title:         "Filing an Effective Report",
					Content:       "A good safety report names the location precisely, describes the hazard, and attaches a photo when possible.",
					Type:          "text",
					Order:         2,
					EstimatedTime: 15,
				},
			},
		},
	}
}

func starterQuiz(moduleID, instructorID, moduleTitle string) *models.Quiz {
	if moduleTitle != "Cyberbullying Awareness" {
		return nil
	}

	return &models.Quiz{
		Title:        "Cyberbullying Quiz",
		Description:  "Test your knowledge about cyberbullying awareness and prevention.",
		ModuleID:     moduleID,
		InstructorID: instructorID,
		IsPublished:  true,
		IsActive:     true,
		Questions: []models.QuizQuestion{
			{
				QuestionText: "What is cyberbullying?",
				Type:         "single-choice",
				Order:        1,
				Points:       1,
				Explanation:  "Cyberbullying is bullying that takes place over digital devices like cell phones, computers, and tablets.",
				Options: []models.QuizOption{
					{Text: "Bullying that only happens in person"},
					{Text: "Bullying that takes place over digital devices", IsCorrect: true},
					{Text: "A type of computer virus"},
					{Text: "A form of online gaming"},
				},
			},
			{
				QuestionText: "What should you do if you witness cyberbullying?",
				Type:         "single-choice",
				Order:        2,
				Points:       1,
				Explanation:  "Documenting and reporting to a trusted adult is the recommended response.",
				Options: []models.QuizOption{
					{Text: "Ignore it completely"},
					{Text: "Join in to avoid becoming a target yourself"},
					{Text: "Take screenshots and report it to a trusted adult", IsCorrect: true},
					{Text: "Directly confront the bully online"},
				},
			},
		},
	}
}
