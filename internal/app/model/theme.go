package model

const ThemeNameMaxLength = 50

// Theme is a story topic. Icon holds raw SVG path markup.
type Theme struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`
	Icon string `gorm:"type:text;not null" json:"icon"`
}

func (Theme) TableName() string {
	return "themes"
}

func (t Theme) String() string {
	return t.Name
}
