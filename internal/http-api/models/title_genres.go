package models

// explicit join model so the link table carries its own id
type TitleGenre struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"title_id" gorm:"not null;uniqueIndex:idx_title_genre"`
	GenreID int64 `json:"genre_id" gorm:"not null;uniqueIndex:idx_title_genre"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
