package database

import (
	"log"
	"time"

	"gikai/models"

	"gorm.io/gorm"
)

// SeedSampleData loads a small demonstration dataset. It only runs against
// an empty database so restarting the server never duplicates anything.
func SeedSampleData(db *gorm.DB) error {
	var count int64
	db.Model(&models.CouncilMember{}).Count(&count)
	if count > 0 {
		log.Println("Sample data skipped, council members already present")
		return nil
	}

	now := time.Now().UnixMilli()
	day := int64(24 * 60 * 60 * 1000)

	members := []models.CouncilMember{
		{
			Name:           "田中太郎",
			Position:       "議長",
			PoliticalParty: "無所属",
			ElectionCount:  4,
			Committee:      "総務委員会",
			Bio:            "地域福祉と防災対策に取り組んでいます。",
			TermStart:      now - 365*day,
			IsActive:       true,
		},
		{
			Name:           "佐藤花子",
			Position:       "副議長",
			PoliticalParty: "市民の会",
			ElectionCount:  3,
			Committee:      "文教厚生委員会",
			Bio:            "子育て支援と教育環境の充実を進めています。",
			TermStart:      now - 365*day,
			IsActive:       true,
		},
		{
			Name:           "鈴木一郎",
			PoliticalParty: "未来創造",
			ElectionCount:  1,
			Committee:      "産業建設委員会",
			Bio:            "地域経済の活性化と観光振興が専門です。",
			TermStart:      now - 180*day,
			IsActive:       true,
		},
	}
	if err := db.Create(&members).Error; err != nil {
		return err
	}

	questions := []models.Question{
		{
			Title:           "小中学校の給食費無償化について",
			Content:         "近隣自治体で進む給食費無償化について、本市の検討状況を伺います。",
			Category:        "教育",
			CouncilMemberID: members[1].ID,
			SessionDate:     now - 60*day,
			SessionNumber:   "令和6年第2回定例会",
			Status:          models.StatusAnswered,
		},
		{
			Title:           "津波避難タワーの整備計画について",
			Content:         "沿岸部の避難施設が不足しています。整備計画の進捗を伺います。",
			Category:        "防災",
			CouncilMemberID: members[0].ID,
			SessionDate:     now - 60*day,
			SessionNumber:   "令和6年第2回定例会",
			Status:          models.StatusAnswered,
		},
		{
			Title:           "空き家を活用した移住促進策について",
			Content:         "増加する空き家を移住希望者向けに活用する施策を提案します。",
			Category:        "まちづくり",
			CouncilMemberID: members[2].ID,
			SessionDate:     now - 10*day,
			SessionNumber:   "令和6年第3回定例会",
			Status:          models.StatusPending,
		},
	}
	if err := db.Create(&questions).Error; err != nil {
		return err
	}

	responses := []models.Response{
		{
			QuestionID:      questions[0].ID,
			Content:         "段階的な無償化を令和7年度から開始する方向で検討を進めています。",
			RespondentTitle: "教育長",
			Department:      "教育委員会",
			ResponseDate:    now - 59*day,
		},
		{
			QuestionID:      questions[1].ID,
			Content:         "現在2基目の避難タワーの用地選定を行っており、年度内に公表予定です。",
			RespondentTitle: "市長",
			Department:      "危機管理課",
			ResponseDate:    now - 59*day,
		},
	}
	if err := db.Create(&responses).Error; err != nil {
		return err
	}

	news := []models.News{
		{
			Title:       "議会ウォッチサイトを公開しました",
			Content:     "市議会の質問と答弁をどなたでも閲覧できるようになりました。",
			Category:    "お知らせ",
			IsPublished: true,
			PublishDate: now - 30*day,
			AuthorID:    1,
		},
		{
			Title:       "令和6年第3回定例会の日程について",
			Content:     "第3回定例会は9月2日から9月20日まで開催されます。",
			Category:    "議会情報",
			IsPublished: true,
			PublishDate: now - 7*day,
			AuthorID:    1,
		},
	}
	if err := db.Create(&news).Error; err != nil {
		return err
	}

	faqItems := []models.FAQItem{
		{
			Category:    "サイトについて",
			Question:    "このサイトは誰が運営していますか？",
			Answer:      "市民有志による議会ウォッチプロジェクトが運営しています。",
			IsPublished: true,
			SortOrder:   1,
			CreatedBy:   1,
		},
		{
			Category:    "サイトについて",
			Question:    "掲載されている情報の出典は？",
			Answer:      "市議会の会議録および公開資料に基づいています。",
			IsPublished: true,
			SortOrder:   2,
			CreatedBy:   1,
		},
		{
			Category:    "議会について",
			Question:    "定例会はいつ開催されますか？",
			Answer:      "通常、年4回（3月・6月・9月・12月）開催されます。",
			IsPublished: true,
			SortOrder:   1,
			CreatedBy:   1,
		},
	}
	if err := db.Create(&faqItems).Error; err != nil {
		return err
	}

	slides := []models.SlideshowSlide{
		{
			Title:           "あなたの声を市政に",
			Description:     "気になる質問に「いいね」で関心を伝えましょう",
			BackgroundColor: "#1e3a8a",
			SortOrder:       1,
			IsActive:        true,
			CreatedBy:       1,
		},
		{
			Title:           "定例会の質問を公開中",
			Description:     "最新の一般質問と答弁をチェック",
			BackgroundColor: "#065f46",
			SortOrder:       2,
			IsActive:        true,
			CreatedBy:       1,
		},
	}
	if err := db.Create(&slides).Error; err != nil {
		return err
	}

	log.Println("Sample data seeded")
	return nil
}
