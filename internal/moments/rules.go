package moments

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"marathon-api/internal/apperr"
	"marathon-api/internal/filestore"
)

var allowedExts = map[string]MediaType{
	"jpg": MediaImage, "jpeg": MediaImage, "png": MediaImage, "gif": MediaImage,
	"mp4": MediaVideo, "mov": MediaVideo, "avi": MediaVideo, "webm": MediaVideo,
}

// CleanTags：'#' 分隔转为逗号分隔，并去掉首尾的逗号与空格
// 例："#跑步#马拉松" -> "跑步,马拉松"
func CleanTags(tags string) string {
	tags = strings.ReplaceAll(tags, "#", ",")
	return strings.Trim(tags, ", ")
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// checkContent：内容按字符（rune）计数
func checkContent(fe apperr.FieldErrors, content string) {
	if utf8.RuneCountInString(content) > MaxContentRunes {
		fe.Add("content", "content must be at most 200 characters")
	}
}

func checkTags(fe apperr.FieldErrors, tags string) {
	if utf8.RuneCountInString(tags) > MaxTagsRunes {
		fe.Add("tags", "tags must be at most 200 characters")
	}
}

// mediaTypes：校验文件数量与类型，返回与 files 一一对应的媒体类型
// 约束：最多 9 个文件、最多 1 个视频；types 非空时数量必须与文件一致。
func mediaTypes(fe apperr.FieldErrors, files []Upload, types []string) []MediaType {
	if len(files) > MaxMedia {
		fe.Add("media_files", "at most 9 media files are allowed")
		return nil
	}
	if len(types) > 0 && len(types) != len(files) {
		fe.Add("media_types", "media_types must match media_files one to one")
		return nil
	}
	out := make([]MediaType, len(files))
	videos := 0
	for i, f := range files {
		inferred, ok := allowedExts[filestore.Ext(f.Name)]
		if !ok {
			fe.Add("media_files", "unsupported file type: "+f.Name)
			return nil
		}
		mt := inferred
		if len(types) > 0 {
			mt = MediaType(strings.TrimSpace(types[i]))
			if !mt.Valid() {
				fe.Add("media_types", "invalid choice: "+types[i])
				return nil
			}
		}
		if mt == MediaVideo {
			videos++
		}
		out[i] = mt
	}
	if videos > MaxVideos {
		fe.Add("media_files", "at most 1 video is allowed")
		return nil
	}
	return out
}
