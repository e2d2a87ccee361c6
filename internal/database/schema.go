package database

import (
	"fmt"
	"strings"
	"text/template"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS ` + "`{{.User}}`" + ` (
    bot_id BIGINT NOT NULL,
    id BIGINT NOT NULL,
    is_bot TINYINT(1) NOT NULL DEFAULT 0,
    first_name CHAR(255) NOT NULL DEFAULT '',
    last_name CHAR(255) DEFAULT NULL,
    username CHAR(191) DEFAULT NULL,
    language_code CHAR(10) DEFAULT NULL,
    created_at DATETIME NULL DEFAULT NULL,
    updated_at DATETIME NULL DEFAULT NULL,
    PRIMARY KEY (bot_id, id),
    KEY username (username)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;

CREATE TABLE IF NOT EXISTS ` + "`{{.Chat}}`" + ` (
    bot_id BIGINT NOT NULL,
    id BIGINT NOT NULL,
    type ENUM('private', 'group', 'supergroup', 'channel') NOT NULL,
    title CHAR(255) DEFAULT '',
    username CHAR(255) DEFAULT NULL,
    first_name CHAR(255) DEFAULT NULL,
    last_name CHAR(255) DEFAULT NULL,
    all_members_are_administrators TINYINT(1) DEFAULT 0,
    created_at DATETIME NULL DEFAULT NULL,
    updated_at DATETIME NULL DEFAULT NULL,
    old_id BIGINT DEFAULT NULL,
    PRIMARY KEY (bot_id, id),
    KEY old_id (old_id),
    KEY updated_at (bot_id, updated_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;

CREATE TABLE IF NOT EXISTS ` + "`{{.UserChat}}`" + ` (
    bot_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    PRIMARY KEY (bot_id, user_id, chat_id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id) ON DELETE CASCADE ON UPDATE CASCADE,
    FOREIGN KEY (bot_id, chat_id) REFERENCES ` + "`{{.Chat}}`" + ` (bot_id, id) ON DELETE CASCADE ON UPDATE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;

CREATE TABLE IF NOT EXISTS ` + "`{{.Message}}`" + ` (
    bot_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    id BIGINT UNSIGNED NOT NULL,
    user_id BIGINT NULL DEFAULT NULL,
    date DATETIME NULL DEFAULT NULL,
    forward_from BIGINT NULL DEFAULT NULL,
    forward_from_chat BIGINT NULL DEFAULT NULL,
    forward_from_message_id BIGINT NULL DEFAULT NULL,
    forward_signature TEXT NULL DEFAULT NULL,
    forward_sender_name TEXT NULL DEFAULT NULL,
    forward_date DATETIME NULL DEFAULT NULL,
    reply_to_chat BIGINT NULL DEFAULT NULL,
    reply_to_message BIGINT UNSIGNED DEFAULT NULL,
    via_bot BIGINT NULL DEFAULT NULL,
    edit_date DATETIME NULL DEFAULT NULL,
    media_group_id TEXT,
    author_signature TEXT,
    text TEXT,
    entities TEXT,
    caption_entities TEXT,
    audio TEXT,
    document TEXT,
    animation TEXT,
    game TEXT,
    photo TEXT,
    sticker TEXT,
    video TEXT,
    voice TEXT,
    video_note TEXT,
    caption TEXT,
    contact TEXT,
    location TEXT,
    venue TEXT,
    poll TEXT,
    dice TEXT,
    new_chat_members TEXT,
    left_chat_member BIGINT NULL DEFAULT NULL,
    new_chat_title CHAR(255) DEFAULT NULL,
    new_chat_photo TEXT,
    delete_chat_photo TINYINT(1) DEFAULT 0,
    group_chat_created TINYINT(1) DEFAULT 0,
    supergroup_chat_created TINYINT(1) DEFAULT 0,
    channel_chat_created TINYINT(1) DEFAULT 0,
    migrate_to_chat_id BIGINT NULL DEFAULT NULL,
    migrate_from_chat_id BIGINT NULL DEFAULT NULL,
    pinned_message TEXT NULL,
    invoice TEXT NULL,
    successful_payment TEXT NULL,
    connected_website TEXT NULL,
    passport_data TEXT NULL,
    reply_markup TEXT NULL,
    PRIMARY KEY (bot_id, chat_id, id),
    KEY user_id (bot_id, user_id),
    KEY reply_to (bot_id, reply_to_chat, reply_to_message),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, chat_id) REFERENCES ` + "`{{.Chat}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, forward_from) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, forward_from_chat) REFERENCES ` + "`{{.Chat}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, reply_to_chat, reply_to_message) REFERENCES ` + "`{{.Message}}`" + ` (bot_id, chat_id, id),
    FOREIGN KEY (bot_id, via_bot) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, left_chat_member) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;

CREATE TABLE IF NOT EXISTS ` + "`{{.EditedMessage}}`" + ` (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    bot_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    message_id BIGINT UNSIGNED NOT NULL,
    user_id BIGINT NULL DEFAULT NULL,
    edit_date DATETIME NULL DEFAULT NULL,
    text TEXT,
    entities TEXT,
    caption TEXT,
    PRIMARY KEY (id),
    KEY message (bot_id, chat_id, message_id),
    FOREIGN KEY (bot_id, chat_id) REFERENCES ` + "`{{.Chat}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;

CREATE TABLE IF NOT EXISTS ` + "`{{.InlineQuery}}`" + ` (
    bot_id BIGINT NOT NULL,
    id CHAR(191) NOT NULL,
    user_id BIGINT NULL DEFAULT NULL,
    location CHAR(255) NULL DEFAULT NULL,
    query TEXT NOT NULL,
    ` + "`offset`" + ` CHAR(255) NULL DEFAULT NULL,
    chat_type CHAR(255) NULL DEFAULT NULL,
    created_at DATETIME NULL DEFAULT NULL,
    PRIMARY KEY (bot_id, id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;

CREATE TABLE IF NOT EXISTS ` + "`{{.ChosenInlineResult}}`" + ` (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    bot_id BIGINT NOT NULL,
    result_id CHAR(255) NOT NULL DEFAULT '',
    user_id BIGINT NULL DEFAULT NULL,
    location CHAR(255) NULL DEFAULT NULL,
    inline_message_id CHAR(255) NULL DEFAULT NULL,
    query TEXT NOT NULL,
    created_at DATETIME NULL DEFAULT NULL,
    PRIMARY KEY (id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;

CREATE TABLE IF NOT EXISTS ` + "`{{.CallbackQuery}}`" + ` (
    bot_id BIGINT NOT NULL,
    id CHAR(191) NOT NULL,
    user_id BIGINT NULL DEFAULT NULL,
    chat_id BIGINT NULL DEFAULT NULL,
    message_id BIGINT UNSIGNED DEFAULT NULL,
    inline_message_id CHAR(255) NULL DEFAULT NULL,
    chat_instance CHAR(255) NOT NULL DEFAULT '',
    data CHAR(255) NOT NULL DEFAULT '',
    game_short_name CHAR(255) NOT NULL DEFAULT '',
    created_at DATETIME NULL DEFAULT NULL,
    PRIMARY KEY (bot_id, id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, chat_id, message_id) REFERENCES ` + "`{{.Message}}`" + ` (bot_id, chat_id, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;

CREATE TABLE IF NOT EXISTS ` + "`{{.Update}}`" + ` (
    bot_id BIGINT NOT NULL,
    id BIGINT UNSIGNED NOT NULL,
    kind CHAR(32) NOT NULL DEFAULT '',
    chat_id BIGINT NULL DEFAULT NULL,
    message_id BIGINT UNSIGNED DEFAULT NULL,
    edited_message_id BIGINT UNSIGNED DEFAULT NULL,
    inline_query_id CHAR(191) DEFAULT NULL,
    chosen_inline_result_id BIGINT UNSIGNED DEFAULT NULL,
    callback_query_id CHAR(191) DEFAULT NULL,
    created_at DATETIME NULL DEFAULT NULL,
    PRIMARY KEY (bot_id, id),
    FOREIGN KEY (bot_id, chat_id, message_id) REFERENCES ` + "`{{.Message}}`" + ` (bot_id, chat_id, id),
    FOREIGN KEY (edited_message_id) REFERENCES ` + "`{{.EditedMessage}}`" + ` (id),
    FOREIGN KEY (bot_id, inline_query_id) REFERENCES ` + "`{{.InlineQuery}}`" + ` (bot_id, id),
    FOREIGN KEY (chosen_inline_result_id) REFERENCES ` + "`{{.ChosenInlineResult}}`" + ` (id),
    FOREIGN KEY (bot_id, callback_query_id) REFERENCES ` + "`{{.CallbackQuery}}`" + ` (bot_id, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;

CREATE TABLE IF NOT EXISTS ` + "`{{.RequestLimiter}}`" + ` (
    id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    bot_id BIGINT NOT NULL,
    chat_id CHAR(255) NULL DEFAULT NULL,
    inline_message_id CHAR(255) NULL DEFAULT NULL,
    method CHAR(255) DEFAULT NULL,
    created_at DATETIME NULL DEFAULT NULL,
    PRIMARY KEY (id),
    KEY created_at (bot_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_520_ci;
`

// SQLite keeps timestamps as TEXT in the canonical layout so that the driver
// never converts them and lexical order equals chronological order.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ` + "`{{.User}}`" + ` (
    bot_id INTEGER NOT NULL,
    id INTEGER NOT NULL,
    is_bot INTEGER NOT NULL DEFAULT 0,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT,
    username TEXT,
    language_code TEXT,
    created_at TEXT,
    updated_at TEXT,
    PRIMARY KEY (bot_id, id)
);

CREATE TABLE IF NOT EXISTS ` + "`{{.Chat}}`" + ` (
    bot_id INTEGER NOT NULL,
    id INTEGER NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('private', 'group', 'supergroup', 'channel')),
    title TEXT DEFAULT '',
    username TEXT,
    first_name TEXT,
    last_name TEXT,
    all_members_are_administrators INTEGER DEFAULT 0,
    created_at TEXT,
    updated_at TEXT,
    old_id INTEGER,
    PRIMARY KEY (bot_id, id)
);

CREATE TABLE IF NOT EXISTS ` + "`{{.UserChat}}`" + ` (
    bot_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    chat_id INTEGER NOT NULL,
    PRIMARY KEY (bot_id, user_id, chat_id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id) ON DELETE CASCADE ON UPDATE CASCADE,
    FOREIGN KEY (bot_id, chat_id) REFERENCES ` + "`{{.Chat}}`" + ` (bot_id, id) ON DELETE CASCADE ON UPDATE CASCADE
);

CREATE TABLE IF NOT EXISTS ` + "`{{.Message}}`" + ` (
    bot_id INTEGER NOT NULL,
    chat_id INTEGER NOT NULL,
    id INTEGER NOT NULL,
    user_id INTEGER,
    date TEXT,
    forward_from INTEGER,
    forward_from_chat INTEGER,
    forward_from_message_id INTEGER,
    forward_signature TEXT,
    forward_sender_name TEXT,
    forward_date TEXT,
    reply_to_chat INTEGER,
    reply_to_message INTEGER,
    via_bot INTEGER,
    edit_date TEXT,
    media_group_id TEXT,
    author_signature TEXT,
    text TEXT,
    entities TEXT,
    caption_entities TEXT,
    audio TEXT,
    document TEXT,
    animation TEXT,
    game TEXT,
    photo TEXT,
    sticker TEXT,
    video TEXT,
    voice TEXT,
    video_note TEXT,
    caption TEXT,
    contact TEXT,
    location TEXT,
    venue TEXT,
    poll TEXT,
    dice TEXT,
    new_chat_members TEXT,
    left_chat_member INTEGER,
    new_chat_title TEXT,
    new_chat_photo TEXT,
    delete_chat_photo INTEGER DEFAULT 0,
    group_chat_created INTEGER DEFAULT 0,
    supergroup_chat_created INTEGER DEFAULT 0,
    channel_chat_created INTEGER DEFAULT 0,
    migrate_to_chat_id INTEGER,
    migrate_from_chat_id INTEGER,
    pinned_message TEXT,
    invoice TEXT,
    successful_payment TEXT,
    connected_website TEXT,
    passport_data TEXT,
    reply_markup TEXT,
    PRIMARY KEY (bot_id, chat_id, id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, chat_id) REFERENCES ` + "`{{.Chat}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, forward_from) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, forward_from_chat) REFERENCES ` + "`{{.Chat}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, reply_to_chat, reply_to_message) REFERENCES ` + "`{{.Message}}`" + ` (bot_id, chat_id, id),
    FOREIGN KEY (bot_id, via_bot) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, left_chat_member) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id)
);

CREATE TABLE IF NOT EXISTS ` + "`{{.EditedMessage}}`" + ` (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bot_id INTEGER NOT NULL,
    chat_id INTEGER NOT NULL,
    message_id INTEGER NOT NULL,
    user_id INTEGER,
    edit_date TEXT,
    text TEXT,
    entities TEXT,
    caption TEXT,
    FOREIGN KEY (bot_id, chat_id) REFERENCES ` + "`{{.Chat}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id)
);

CREATE INDEX IF NOT EXISTS ` + "`idx_{{.EditedMessage}}_message`" + ` ON ` + "`{{.EditedMessage}}`" + ` (bot_id, chat_id, message_id);

CREATE TABLE IF NOT EXISTS ` + "`{{.InlineQuery}}`" + ` (
    bot_id INTEGER NOT NULL,
    id TEXT NOT NULL,
    user_id INTEGER,
    location TEXT,
    query TEXT NOT NULL,
    ` + "`offset`" + ` TEXT,
    chat_type TEXT,
    created_at TEXT,
    PRIMARY KEY (bot_id, id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id)
);

CREATE TABLE IF NOT EXISTS ` + "`{{.ChosenInlineResult}}`" + ` (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bot_id INTEGER NOT NULL,
    result_id TEXT NOT NULL DEFAULT '',
    user_id INTEGER,
    location TEXT,
    inline_message_id TEXT,
    query TEXT NOT NULL,
    created_at TEXT,
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id)
);

CREATE TABLE IF NOT EXISTS ` + "`{{.CallbackQuery}}`" + ` (
    bot_id INTEGER NOT NULL,
    id TEXT NOT NULL,
    user_id INTEGER,
    chat_id INTEGER,
    message_id INTEGER,
    inline_message_id TEXT,
    chat_instance TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT '',
    game_short_name TEXT NOT NULL DEFAULT '',
    created_at TEXT,
    PRIMARY KEY (bot_id, id),
    FOREIGN KEY (bot_id, user_id) REFERENCES ` + "`{{.User}}`" + ` (bot_id, id),
    FOREIGN KEY (bot_id, chat_id, message_id) REFERENCES ` + "`{{.Message}}`" + ` (bot_id, chat_id, id)
);

CREATE TABLE IF NOT EXISTS ` + "`{{.Update}}`" + ` (
    bot_id INTEGER NOT NULL,
    id INTEGER NOT NULL,
    kind TEXT NOT NULL DEFAULT '',
    chat_id INTEGER,
    message_id INTEGER,
    edited_message_id INTEGER,
    inline_query_id TEXT,
    chosen_inline_result_id INTEGER,
    callback_query_id TEXT,
    created_at TEXT,
    PRIMARY KEY (bot_id, id),
    FOREIGN KEY (bot_id, chat_id, message_id) REFERENCES ` + "`{{.Message}}`" + ` (bot_id, chat_id, id),
    FOREIGN KEY (edited_message_id) REFERENCES ` + "`{{.EditedMessage}}`" + ` (id),
    FOREIGN KEY (bot_id, inline_query_id) REFERENCES ` + "`{{.InlineQuery}}`" + ` (bot_id, id),
    FOREIGN KEY (chosen_inline_result_id) REFERENCES ` + "`{{.ChosenInlineResult}}`" + ` (id),
    FOREIGN KEY (bot_id, callback_query_id) REFERENCES ` + "`{{.CallbackQuery}}`" + ` (bot_id, id)
);

CREATE TABLE IF NOT EXISTS ` + "`{{.RequestLimiter}}`" + ` (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bot_id INTEGER NOT NULL,
    chat_id TEXT,
    inline_message_id TEXT,
    method TEXT,
    created_at TEXT
);

CREATE INDEX IF NOT EXISTS ` + "`idx_{{.RequestLimiter}}_created_at`" + ` ON ` + "`{{.RequestLimiter}}`" + ` (bot_id, created_at);
`

var (
	mysqlTemplate  = template.Must(template.New("mysql").Parse(mysqlSchema))
	sqliteTemplate = template.Must(template.New("sqlite").Parse(sqliteSchema))
)

func schemaStatements(dialect Dialect, tables Tables) ([]string, error) {
	var tpl *template.Template
	switch dialect {
	case MySQL:
		tpl = mysqlTemplate
	case SQLite:
		tpl = sqliteTemplate
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	var b strings.Builder
	if err := tpl.Execute(&b, tables); err != nil {
		return nil, fmt.Errorf("render schema: %w", err)
	}

	var stmts []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}
