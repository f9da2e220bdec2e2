package models

// All 返回需要自动迁移的全部模型，顺序即依赖顺序
func All() []interface{} {
	return []interface{}{
		&User{},
		&Album{},
		&AlbumParticipant{},
		&Image{},
		&Chat{},
		&Message{},
		&RevokedToken{},
	}
}
