package session

import (
	"fmt"

	"github.com/akiii/botforge/internal/chat"
)

const (
	embedColor = 0x00ff00

	notSetPlaceholder = "未設定"

	botTypeChoices = "1️⃣ **機能型ボット** - 特定の機能を持つボット（天気予報、翻訳、計算など）\n" +
		"2️⃣ **管理型ボット** - サーバー管理用のボット（モデレーション、ロール管理など）\n" +
		"3️⃣ **娯楽型ボット** - ゲームやエンターテイメント用のボット\n" +
		"4️⃣ **その他** - 上記に当てはまらないボット"
)

func orNotSet(v string) string {
	if v == "" {
		return notSetPlaceholder
	}
	return v
}

// stageEmbed renders the prompt for a stage from the currently stored
// fields; fields not yet collected show the not-set placeholder.
func stageEmbed(stage Stage, info BotInfo) *chat.Embed {
	switch stage {
	case StageBotType:
		return &chat.Embed{
			Title:       "🤖 Discord Bot 作成アシスタント",
			Description: "インタラクティブモードでボットを作成しましょう！\nまず、どのような種類のボットを作りたいか教えてください。",
			Color:       embedColor,
			Fields: []chat.EmbedField{
				{Name: "選択肢", Value: botTypeChoices},
				{Name: "操作方法", Value: "数字（1-4）を入力するか、具体的な説明を書いてください。\n`cancel`と入力すると作成をキャンセルできます。\n`back`と入力すると前の項目に戻ります。"},
			},
		}
	case StageBotName:
		return &chat.Embed{
			Title:       "📝 ボットの名前を決めましょう",
			Description: fmt.Sprintf("ボットタイプ: **%s**\n\nボットの名前を教えてください。", orNotSet(info.Type)),
			Color:       embedColor,
			Fields: []chat.EmbedField{
				{Name: "例", Value: "• WeatherBot\n• ModBot\n• GameBot\n• HelperBot"},
			},
		}
	case StageBotFeatures:
		return &chat.Embed{
			Title:       "⚙️ ボットの機能を設定しましょう",
			Description: fmt.Sprintf("ボット名: **%s**\n\nボットにどのような機能を持たせたいですか？", orNotSet(info.Name)),
			Color:       embedColor,
			Fields: []chat.EmbedField{
				{Name: "機能の例", Value: "• メッセージへの自動返信\n• コマンドによる情報取得\n• ファイルの管理\n• ユーザーとのゲーム\n• その他の特別な機能"},
			},
		}
	case StageBotCommands:
		return &chat.Embed{
			Title:       "🔧 コマンドを設定しましょう",
			Description: fmt.Sprintf("機能: **%s**\n\nボットで使用するコマンドや動作を具体的に教えてください。", orNotSet(info.Features)),
			Color:       embedColor,
			Fields: []chat.EmbedField{
				{Name: "コマンドの例", Value: "• `!hello` - 挨拶を返す\n• `!weather <地名>` - 天気予報を表示\n• `!kick @user` - ユーザーをキック"},
				{Name: "自由記述", Value: "具体的なコマンドを書くか、「自動で決めて」と入力してください。"},
			},
		}
	case StageConfirmation:
		return confirmationEmbed(info)
	}
	return nil
}

func confirmationEmbed(info BotInfo) *chat.Embed {
	return &chat.Embed{
		Title: "✅ ボットの設定を確認してください",
		Color: embedColor,
		Fields: []chat.EmbedField{
			{Name: "ボットタイプ", Value: orNotSet(info.Type), Inline: true},
			{Name: "ボット名", Value: orNotSet(info.Name), Inline: true},
			{Name: "機能", Value: orNotSet(info.Features)},
			{Name: "コマンド", Value: orNotSet(info.Commands)},
			{Name: "確認", Value: "この設定でボットを作成しますか？\n`yes` - 作成開始\n`no` - 最初からやり直し\n`cancel` - キャンセル"},
		},
	}
}

func restartEmbed() *chat.Embed {
	return &chat.Embed{
		Title:       "🔄 最初からやり直しましょう",
		Description: "どのような種類のボットを作りたいか教えてください。",
		Color:       embedColor,
		Fields: []chat.EmbedField{
			{Name: "選択肢", Value: botTypeChoices},
		},
	}
}
